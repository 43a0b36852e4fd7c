package repositories

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
// The mutex makes add-or-increment a single step, matching the atomicity the
// Mongo implementation gets from server-side updates.
type MockCartRepository struct {
	carts map[primitive.ObjectID]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[primitive.ObjectID]models.Cart),
	}
}

// Create adds a new empty cart and returns its ID.
func (r *MockCartRepository) Create(ctx context.Context) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := models.Cart{
		ID:       primitive.NewObjectID(),
		Products: []models.CartLine{},
	}
	r.carts[cart.ID] = cart
	return cart.ID, nil
}

// GetByID returns a cart by its ID.
func (r *MockCartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(id)
}

func (r *MockCartRepository) getLocked(id primitive.ObjectID) (*models.Cart, error) {
	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", id.Hex(), ErrCartNotFound)
	}
	copied := cart
	copied.Products = append([]models.CartLine(nil), cart.Products...)
	return &copied, nil
}

// ContainsProduct reports whether the cart has a line for the product.
func (r *MockCartRepository) ContainsProduct(ctx context.Context, cid, pid primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[cid]
	if !ok {
		return false, nil
	}
	for _, line := range cart.Products {
		if line.Product == pid {
			return true, nil
		}
	}
	return false, nil
}

// AddOrIncrement adds quantity to an existing line or appends a new one.
func (r *MockCartRepository) AddOrIncrement(ctx context.Context, cid, pid primitive.ObjectID, quantity int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cid]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
	}

	found := false
	for i := range cart.Products {
		if cart.Products[i].Product == pid {
			cart.Products[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Products = append(cart.Products, models.CartLine{Product: pid, Quantity: quantity})
	}
	r.carts[cid] = cart
	return r.getLocked(cid)
}

// Remove deletes the product's line from the cart.
func (r *MockCartRepository) Remove(ctx context.Context, cid, pid primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cid]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
	}

	lines := make([]models.CartLine, 0, len(cart.Products))
	for _, line := range cart.Products {
		if line.Product != pid {
			lines = append(lines, line)
		}
	}
	cart.Products = lines
	r.carts[cid] = cart
	return r.getLocked(cid)
}

// Empty clears the cart's line sequence.
func (r *MockCartRepository) Empty(ctx context.Context, cid primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cid]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", cid.Hex(), ErrCartNotFound)
	}
	cart.Products = []models.CartLine{}
	r.carts[cid] = cart
	return r.getLocked(cid)
}
