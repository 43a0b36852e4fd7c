package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
	"camisetas/internal/services"
)

// The product listing view shows five products per page.
const viewPageSize = 5

// ViewHandler renders the server-side HTML views.
type ViewHandler struct {
	products *services.ProductService
	carts    *services.CartService
	validate *validator.Validate
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(products *services.ProductService, carts *services.CartService) *ViewHandler {
	return &ViewHandler{
		products: products,
		carts:    carts,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the view routes with the Fiber app.
func (h *ViewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleProductsPage)
	router.Get("/carts/:cid", h.HandleCartPage)
	router.Get("/realtimeproducts", h.HandleRealtimeProducts)
	router.Post("/realtimeproducts", h.HandleRealtimeProductForm)
}

// HandleProductsPage renders the paged product listing.
func (h *ViewHandler) HandleProductsPage(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page"))

	listing, err := h.products.List(c.Context(), services.ProductQuery{
		Limit: viewPageSize,
		Page:  page,
	})
	if err != nil {
		log.Printf("Error listing products for view: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("An internal error occurred. Please try again later.")
	}

	return c.Render("home", fiber.Map{
		"Products":    listing.Docs,
		"HasPrevPage": listing.HasPrevPage,
		"HasNextPage": listing.HasNextPage,
		"PrevPage":    listing.PrevPage,
		"NextPage":    listing.NextPage,
		"TotalPages":  listing.TotalPages,
		"Page":        listing.Page,
	})
}

// HandleCartPage renders the contents of one cart. Lines whose product has
// been deleted are skipped by the template.
func (h *ViewHandler) HandleCartPage(c *fiber.Ctx) error {
	cid, err := primitive.ObjectIDFromHex(c.Params("cid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid object id"})
	}

	cart, err := h.carts.GetPopulated(c.Context(), cid)
	if err != nil {
		return cartError(c, err, "getting cart for view")
	}

	return c.Render("cart", fiber.Map{
		"Products": cart.Products,
		"ID":       cid.Hex(),
	})
}

// HandleRealtimeProducts renders the live-updating product list with its
// creation form.
func (h *ViewHandler) HandleRealtimeProducts(c *fiber.Ctx) error {
	products, err := h.products.ListAll(c.Context())
	if err != nil {
		log.Printf("Error listing products for realtime view: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("An internal error occurred. Please try again later.")
	}

	return c.Render("realtimeproducts", fiber.Map{
		"Products": products,
	})
}

// HandleRealtimeProductForm creates a product from the realtime view's form.
// Price and stock arrive as form text and are parsed to numbers, and status
// is forced to true, before the creation validation runs.
func (h *ViewHandler) HandleRealtimeProductForm(c *fiber.Ctx) error {
	price, _ := strconv.Atoi(c.FormValue("price"))
	stock, _ := strconv.Atoi(c.FormValue("stock"))

	req := models.CreateProductRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Code:        c.FormValue("code"),
		Price:       float64(price),
		Status:      true,
		Stock:       stock,
		Category:    c.FormValue("category"),
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": creationErrorMessage(err),
		})
	}

	if _, err := h.products.Create(c.Context(), req); err != nil {
		log.Printf("Error creating product from form: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("An internal error occurred. Please try again later.")
	}

	return c.Redirect("/realtimeproducts")
}
