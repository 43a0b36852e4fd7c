package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
)

// Price sort directions for paged product queries. The values double as the
// Mongo sort order.
const (
	SortNone = 0
	SortAsc  = 1
	SortDesc = -1
)

// ProductFilter narrows a paged query. The zero value matches everything.
type ProductFilter struct {
	Category string // stored category text, not the query token
}

// ProductPage is one page of matching products plus the pagination
// bookkeeping. PrevPage and NextPage are nil when no such page exists.
type ProductPage struct {
	Docs        []models.Product
	TotalPages  int
	Page        int
	PrevPage    *int
	NextPage    *int
	HasPrevPage bool
	HasNextPage bool
}

// newProductPage derives the pagination bookkeeping from a page of docs and
// the total match count. An empty result still reports one (empty) page.
func newProductPage(docs []models.Product, total int64, page, limit int) *ProductPage {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages == 0 {
		totalPages = 1
	}

	result := &ProductPage{
		Docs:        docs,
		TotalPages:  totalPages,
		Page:        page,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
	}
	return result
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetPage(ctx context.Context, filter ProductFilter, page, limit, priceSort int) (*ProductPage, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
