package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
)

// CartRepository defines the interface for cart data access.
//
// AddOrIncrement, Remove and Empty assume the caller has already verified
// that the cart (and product, where relevant) exists; they still report
// ErrCartNotFound when the cart is gone.
type CartRepository interface {
	Create(ctx context.Context) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error)
	ContainsProduct(ctx context.Context, cid, pid primitive.ObjectID) (bool, error)
	AddOrIncrement(ctx context.Context, cid, pid primitive.ObjectID, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, cid, pid primitive.ObjectID) (*models.Cart, error)
	Empty(ctx context.Context, cid primitive.ObjectID) (*models.Cart, error)
}
