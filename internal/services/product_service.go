package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
	"camisetas/internal/repositories"
)

// categoryTokens maps the short query-parameter tokens to the category text
// stored on products. Unrecognized tokens are not an error; they simply
// apply no filter.
var categoryTokens = map[string]string{
	"first":      "Camisetas locales",
	"second":     "Camisetas visitantes",
	"third":      "Camisetas alternativas",
	"goalkeeper": "Camisetas de portero",
}

// ProductQuery carries the list query parameters as the caller supplied
// them. LimitSet records whether the caller chose a limit, because the
// navigation links only embed the limit when it was explicit.
type ProductQuery struct {
	Limit    int
	LimitSet bool
	Page     int
	Category string // category token, not stored text
	Sort     string // "asc", "desc" or empty
}

// ProductListing is a product page plus the precomputed navigation links.
// PrevLink and NextLink are nil exactly when the adjacent page does not
// exist.
type ProductListing struct {
	repositories.ProductPage
	PrevLink *string
	NextLink *string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo    repositories.ProductRepository
	baseURL string
}

// NewProductService creates a new ProductService. baseURL is the absolute
// prefix embedded in pagination links, e.g. "http://localhost:8080".
func NewProductService(repo repositories.ProductRepository, baseURL string) *ProductService {
	return &ProductService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ListAll retrieves the full product list, unpaged.
func (s *ProductService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// List retrieves one page of products with pagination data and navigation
// links. Page defaults to 1 and limit to 10.
func (s *ProductService) List(ctx context.Context, query ProductQuery) (*ProductListing, error) {
	filter := repositories.ProductFilter{
		Category: categoryTokens[query.Category],
	}

	priceSort := repositories.SortNone
	switch query.Sort {
	case "asc":
		priceSort = repositories.SortAsc
	case "desc":
		priceSort = repositories.SortDesc
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	result, err := s.repo.GetPage(ctx, filter, page, limit, priceSort)
	if err != nil {
		return nil, err
	}

	listing := &ProductListing{ProductPage: *result}
	listing.PrevLink = s.pageLink(query, limit, result.PrevPage)
	listing.NextLink = s.pageLink(query, limit, result.NextPage)
	return listing, nil
}

// pageLink builds the absolute URL for an adjacent page, carrying over the
// caller's limit (when set), category and sort parameters. Returns nil when
// there is no adjacent page.
func (s *ProductService) pageLink(query ProductQuery, limit int, page *int) *string {
	if page == nil {
		return nil
	}

	params := []string{}
	if query.LimitSet {
		params = append(params, fmt.Sprintf("limit=%d", limit))
	}
	params = append(params, fmt.Sprintf("page=%d", *page))
	if query.Category != "" {
		params = append(params, "category="+query.Category)
	}
	if query.Sort != "" {
		params = append(params, "sort="+query.Sort)
	}

	link := s.baseURL + "/api/products?" + strings.Join(params, "&")
	return &link
}

// Get retrieves a single product by its ID.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists a new product and returns its assigned ID.
func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (primitive.ObjectID, error) {
	return s.repo.Create(ctx, req.Product())
}

// Update merges the supplied fields over the stored product. A field left at
// its zero value keeps the stored value, so a price of 0 or a status of
// false cannot be written through this path.
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Title != "" {
		product.Title = req.Title
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Code != "" {
		product.Code = req.Code
	}
	if req.Price != 0 {
		product.Price = req.Price
	}
	if req.Status {
		product.Status = true
	}
	if req.Stock != 0 {
		product.Stock = req.Stock
	}
	if req.Category != "" {
		product.Category = req.Category
	}

	return s.repo.Update(ctx, id, product)
}

// Delete removes a product by its ID. Cart lines referencing it become
// dangling; they resolve to nil on populate.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
