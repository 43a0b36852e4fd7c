package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
	"camisetas/internal/repositories"
	"camisetas/internal/services"
)

// CartHandler handles HTTP requests for carts. Cart mutations do not
// broadcast anything.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:cid", h.HandleGetCart)
	cartRoutes.Put("/:cid", h.HandleUpdateCart)
	cartRoutes.Delete("/:cid", h.HandleEmptyCart)
	cartRoutes.Post("/:cid/products/:pid", h.HandleAddProduct)
	cartRoutes.Delete("/:cid/products/:pid", h.HandleRemoveProduct)
	cartRoutes.Put("/:cid/products/:pid", h.HandleSetLineQuantity)
}

// cartError maps the service's sentinel errors to a response, falling back
// to a 500 for unexpected store failures.
func cartError(c *fiber.Ctx, err error, logContext string) error {
	switch {
	case errors.Is(err, repositories.ErrCartNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart not found"})
	case errors.Is(err, repositories.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, repositories.ErrProductNotInCart):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not in cart"})
	}
	log.Printf("Error %s: %v", logContext, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fmt.Sprintf("Error %s", logContext),
	})
}

// HandleCreateCart creates a new empty cart.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	id, err := h.service.Create(c.Context())
	if err != nil {
		return cartError(c, err, "creating cart")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Cart created with id: %s", id.Hex()),
	})
}

// HandleGetCart retrieves a cart with its product references resolved.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cid, err := primitive.ObjectIDFromHex(c.Params("cid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	cart, err := h.service.GetPopulated(c.Context(), cid)
	if err != nil {
		return cartError(c, err, "getting cart")
	}

	return c.JSON(fiber.Map{
		"message": "Cart found successfully",
		"cart":    cart,
	})
}

// HandleAddProduct adds one unit of the product to the cart, incrementing
// the existing line when there is one.
func (h *CartHandler) HandleAddProduct(c *fiber.Ctx) error {
	cid, pid, ok := parseCartProductIDs(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	if _, err := h.service.AddProduct(c.Context(), cid, pid, 1); err != nil {
		return cartError(c, err, "adding product to cart")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product with id %s added to cart with id %s successfully", pid.Hex(), cid.Hex()),
	})
}

// HandleRemoveProduct removes the product's line from the cart entirely.
func (h *CartHandler) HandleRemoveProduct(c *fiber.Ctx) error {
	cid, pid, ok := parseCartProductIDs(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	if _, err := h.service.RemoveProduct(c.Context(), cid, pid); err != nil {
		return cartError(c, err, "removing product from cart")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product with id %s removed from cart with id %s successfully", pid.Hex(), cid.Hex()),
	})
}

// HandleUpdateCart applies a bulk update: the body is a sequence of
// {product, quantity} entries, all of which are validated (shape, reference
// validity, product existence) before any increment is applied.
func (h *CartHandler) HandleUpdateCart(c *fiber.Ctx) error {
	cid, err := primitive.ObjectIDFromHex(c.Params("cid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	if _, err := h.service.Get(c.Context(), cid); err != nil {
		return cartError(c, err, "getting cart")
	}

	var entries []models.CartLineRequest
	if err := c.BodyParser(&entries); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lines := make([]models.CartLine, 0, len(entries))
	for _, entry := range entries {
		if entry.Product == "" || entry.Quantity == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Products are missing information",
			})
		}
		pid, err := primitive.ObjectIDFromHex(entry.Product)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Products properties have incorrect type",
			})
		}
		lines = append(lines, models.CartLine{Product: pid, Quantity: entry.Quantity})
	}

	if err := h.service.UpdateLines(c.Context(), cid, lines); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Products not found"})
		}
		return cartError(c, err, "updating cart")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Cart with id %s updated successfully", cid.Hex()),
	})
}

// HandleSetLineQuantity adds the body's quantity to a line that must already
// be in the cart.
func (h *CartHandler) HandleSetLineQuantity(c *fiber.Ctx) error {
	cid, pid, ok := parseCartProductIDs(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	if err := h.service.VerifyLine(c.Context(), cid, pid); err != nil {
		return cartError(c, err, "checking cart line")
	}

	var req models.QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity has incorrect type"})
	}
	if req.Quantity == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity is missing"})
	}

	if _, err := h.service.AddQuantity(c.Context(), cid, pid, req.Quantity); err != nil {
		return cartError(c, err, "updating cart line")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Added %d of product with id %s to cart with id %s successfully", req.Quantity, pid.Hex(), cid.Hex()),
	})
}

// HandleEmptyCart deletes every line from the cart.
func (h *CartHandler) HandleEmptyCart(c *fiber.Ctx) error {
	cid, err := primitive.ObjectIDFromHex(c.Params("cid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	if _, err := h.service.Empty(c.Context(), cid); err != nil {
		return cartError(c, err, "emptying cart")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Cart with id %s emptied successfully", cid.Hex()),
	})
}

func parseCartProductIDs(c *fiber.Ctx) (cid, pid primitive.ObjectID, ok bool) {
	cid, err := primitive.ObjectIDFromHex(c.Params("cid"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	pid, err = primitive.ObjectIDFromHex(c.Params("pid"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return cid, pid, true
}
