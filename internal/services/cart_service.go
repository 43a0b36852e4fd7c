package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
	"camisetas/internal/repositories"
)

// CartService handles business logic related to carts. It enforces the
// existence preconditions of the cart mutations and resolves product
// references for display.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Create creates a new empty cart and returns its ID.
func (s *CartService) Create(ctx context.Context) (primitive.ObjectID, error) {
	return s.cartRepo.Create(ctx)
}

// Get retrieves a cart by its ID.
func (s *CartService) Get(ctx context.Context, cid primitive.ObjectID) (*models.Cart, error) {
	return s.cartRepo.GetByID(ctx, cid)
}

// GetPopulated retrieves a cart with each line's product reference resolved
// to the full current record. A line whose product has been deleted keeps a
// nil product; callers skip those when rendering.
func (s *CartService) GetPopulated(ctx context.Context, cid primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}

	populated := &models.PopulatedCart{
		ID:       cart.ID,
		Products: make([]models.PopulatedLine, 0, len(cart.Products)),
	}
	for _, line := range cart.Products {
		product, err := s.productRepo.GetByID(ctx, line.Product)
		if err != nil && !errors.Is(err, repositories.ErrProductNotFound) {
			return nil, err
		}
		populated.Products = append(populated.Products, models.PopulatedLine{
			Product:  product,
			Quantity: line.Quantity,
		})
	}
	return populated, nil
}

// AddProduct adds quantity units of the product to the cart, incrementing
// the existing line when there is one. Both the cart and the product must
// exist.
func (s *CartService) AddProduct(ctx context.Context, cid, pid primitive.ObjectID, quantity int) (*models.Cart, error) {
	if _, err := s.cartRepo.GetByID(ctx, cid); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(ctx, pid); err != nil {
		return nil, err
	}
	return s.cartRepo.AddOrIncrement(ctx, cid, pid, quantity)
}

// RemoveProduct removes the product's line from the cart entirely. Both the
// cart and the product must exist.
func (s *CartService) RemoveProduct(ctx context.Context, cid, pid primitive.ObjectID) (*models.Cart, error) {
	if _, err := s.cartRepo.GetByID(ctx, cid); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(ctx, pid); err != nil {
		return nil, err
	}
	return s.cartRepo.Remove(ctx, cid, pid)
}

// Empty clears the cart's line sequence. The cart must exist.
func (s *CartService) Empty(ctx context.Context, cid primitive.ObjectID) (*models.Cart, error) {
	if _, err := s.cartRepo.GetByID(ctx, cid); err != nil {
		return nil, err
	}
	return s.cartRepo.Empty(ctx, cid)
}

// UpdateLines applies a bulk update to the cart: every referenced product is
// checked for existence first, and only then is each line's quantity added
// on top of whatever the cart already holds. Repeated identical updates keep
// growing the quantities; that is the intended semantics of the bulk
// endpoint, not an overwrite.
func (s *CartService) UpdateLines(ctx context.Context, cid primitive.ObjectID, lines []models.CartLine) error {
	if _, err := s.cartRepo.GetByID(ctx, cid); err != nil {
		return err
	}

	for _, line := range lines {
		if _, err := s.productRepo.GetByID(ctx, line.Product); err != nil {
			return err
		}
	}

	for _, line := range lines {
		if _, err := s.cartRepo.AddOrIncrement(ctx, cid, line.Product, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// VerifyLine checks that the cart exists, the product exists, and the cart
// already holds a line for the product. It returns ErrCartNotFound,
// ErrProductNotFound or ErrProductNotInCart accordingly.
func (s *CartService) VerifyLine(ctx context.Context, cid, pid primitive.ObjectID) error {
	if _, err := s.cartRepo.GetByID(ctx, cid); err != nil {
		return err
	}
	if _, err := s.productRepo.GetByID(ctx, pid); err != nil {
		return err
	}
	inCart, err := s.cartRepo.ContainsProduct(ctx, cid, pid)
	if err != nil {
		return err
	}
	if !inCart {
		return repositories.ErrProductNotInCart
	}
	return nil
}

// AddQuantity increments the quantity of a line that is already in the cart.
// Use VerifyLine first; the quantity is added to the existing line, not
// substituted for it.
func (s *CartService) AddQuantity(ctx context.Context, cid, pid primitive.ObjectID, quantity int) (*models.Cart, error) {
	return s.cartRepo.AddOrIncrement(ctx, cid, pid, quantity)
}
