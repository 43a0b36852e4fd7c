package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"camisetas/internal/models"
)

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	col *mongo.Collection
}

// NewMongoCartRepository creates a new instance of MongoCartRepository
// backed by the "carts" collection.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{
		col: db.Collection("carts"),
	}
}

// Create inserts a new empty cart and returns its ID.
func (r *MongoCartRepository) Create(ctx context.Context) (primitive.ObjectID, error) {
	cart := models.Cart{
		ID:       primitive.NewObjectID(),
		Products: []models.CartLine{},
	}
	if _, err := r.col.InsertOne(ctx, cart); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart.ID, nil
}

// GetByID retrieves a cart by its ID.
func (r *MongoCartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart with ID %s: %w", id.Hex(), ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id.Hex(), err)
	}
	return &cart, nil
}

// ContainsProduct reports whether the cart has a line for the product.
func (r *MongoCartRepository) ContainsProduct(ctx context.Context, cid, pid primitive.ObjectID) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"_id": cid, "products.product": pid}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check cart %s for product %s: %w", cid.Hex(), pid.Hex(), err)
	}
	return true, nil
}

// AddOrIncrement atomically adds quantity to the cart's existing line for
// the product, or appends a new line when none exists. Both branches are
// single server-side updates: the increment addresses the matched array
// element with the positional operator, and the append is guarded by a $ne
// on the product so a concurrent first insert cannot produce two lines. If
// the append loses that race, the increment is retried.
func (r *MongoCartRepository) AddOrIncrement(ctx context.Context, cid, pid primitive.ObjectID, quantity int) (*models.Cart, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": cid, "products.product": pid},
			bson.M{"$inc": bson.M{"products.$.quantity": quantity}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to increment product %s in cart %s: %w", pid.Hex(), cid.Hex(), err)
		}
		if res.MatchedCount > 0 {
			return r.GetByID(ctx, cid)
		}

		res, err = r.col.UpdateOne(ctx,
			bson.M{"_id": cid, "products.product": bson.M{"$ne": pid}},
			bson.M{"$push": bson.M{"products": models.CartLine{Product: pid, Quantity: quantity}}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add product %s to cart %s: %w", pid.Hex(), cid.Hex(), err)
		}
		if res.MatchedCount > 0 {
			return r.GetByID(ctx, cid)
		}
	}
	// Neither update matched twice in a row: the cart is gone.
	return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
}

// Remove pulls the product's line out of the cart entirely.
func (r *MongoCartRepository) Remove(ctx context.Context, cid, pid primitive.ObjectID) (*models.Cart, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cid},
		bson.M{"$pull": bson.M{"products": bson.M{"product": pid}}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to remove product %s from cart %s: %w", pid.Hex(), cid.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
	}
	return r.GetByID(ctx, cid)
}

// Empty replaces the cart's line sequence with an empty one.
func (r *MongoCartRepository) Empty(ctx context.Context, cid primitive.ObjectID) (*models.Cart, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cid},
		bson.M{"$set": bson.M{"products": []models.CartLine{}}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to empty cart %s: %w", cid.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
	}
	return r.GetByID(ctx, cid)
}
