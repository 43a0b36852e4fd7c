package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// Insertion order is preserved so that pagination is deterministic.
type MockProductRepository struct {
	products map[primitive.ObjectID]models.Product
	order    []primitive.ObjectID
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[primitive.ObjectID]models.Product),
	}
}

// GetAll returns all products in insertion order.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// GetPage filters, sorts and slices the in-memory product list the way the
// Mongo implementation does server-side.
func (r *MockProductRepository) GetPage(ctx context.Context, filter ProductFilter, page, limit, priceSort int) (*ProductPage, error) {
	r.mu.RLock()
	matching := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matching = append(matching, p)
	}
	r.mu.RUnlock()

	if priceSort != SortNone {
		sort.SliceStable(matching, func(i, j int) bool {
			if priceSort == SortAsc {
				return matching[i].Price < matching[j].Price
			}
			return matching[i].Price > matching[j].Price
		})
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}
	docs := matching[start:end]

	return newProductPage(docs, int64(len(matching)), page, limit), nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id.Hex(), ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product and returns its assigned ID.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = *product
	return product.ID, nil
}

// Update replaces an existing product.
func (r *MockProductRepository) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s for update: %w", id.Hex(), ErrProductNotFound)
	}
	product.ID = id
	r.products[id] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s for deletion: %w", id.Hex(), ErrProductNotFound)
	}
	delete(r.products, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
