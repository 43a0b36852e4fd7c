package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"camisetas/internal/models"
	"camisetas/internal/repositories"
	"camisetas/internal/services"
	"camisetas/pkg/events"
)

// ProductHandler handles HTTP requests for products. After every mutation it
// publishes the full current product list on the injected publisher.
type ProductHandler struct {
	service   *services.ProductService
	publisher events.Publisher
	validate  *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, publisher events.Publisher) *ProductHandler {
	return &ProductHandler{
		service:   service,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:pid", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:pid", h.HandleUpdateProduct)
	productRoutes.Delete("/:pid", h.HandleDeleteProduct)
}

// parseListQuery reads the limit/page/category/sort query parameters.
// Unparseable numbers fall back to the defaults.
func parseListQuery(c *fiber.Ctx) services.ProductQuery {
	query := services.ProductQuery{
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Limit = n
			query.LimitSet = true
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Page = n
		}
	}
	return query
}

// HandleListProducts retrieves one page of products with pagination data and
// navigation links. Responds 404 when the requested page is empty.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	listing, err := h.service.List(c.Context(), parseListQuery(c))
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve products",
		})
	}

	if len(listing.Docs) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No products found",
		})
	}

	return c.JSON(fiber.Map{
		"status":      "success",
		"payload":     listing.Docs,
		"totalPages":  listing.TotalPages,
		"prevPage":    listing.PrevPage,
		"nextPage":    listing.NextPage,
		"page":        listing.Page,
		"hasPrevPage": listing.HasPrevPage,
		"hasNextPage": listing.HasNextPage,
		"prevLink":    listing.PrevLink,
		"nextLink":    listing.NextLink,
	})
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("pid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object id",
		})
	}

	product, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Printf("Error getting product %s: %v", id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve product",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product found successfully",
		"product": product,
	})
}

// HandleCreateProduct creates a new product from the request body and
// broadcasts the updated product list.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing the product information",
		})
	}

	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product information",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": creationErrorMessage(err),
		})
	}

	id, err := h.service.Create(c.Context(), req)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create product",
		})
	}

	h.broadcastProducts(c)

	return c.JSON(fiber.Map{
		"message": "Product added to list successfully",
		"id":      id.Hex(),
	})
}

// HandleUpdateProduct merges the supplied fields over the stored product and
// broadcasts the updated product list.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("pid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object id",
		})
	}

	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing the product information",
		})
	}

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product information",
		})
	}

	if err := h.service.Update(c.Context(), id, req); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Printf("Error updating product %s: %v", id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update product",
		})
	}

	h.broadcastProducts(c)

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
	})
}

// HandleDeleteProduct removes a product and broadcasts the updated product
// list. Cart lines referencing the product are not cleaned up.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("pid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object id",
		})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Printf("Error deleting product %s: %v", id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete product",
		})
	}

	h.broadcastProducts(c)

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// broadcastProducts publishes the full current product list. Broadcast
// failures are logged, not surfaced: the mutation already succeeded.
func (h *ProductHandler) broadcastProducts(c *fiber.Ctx) {
	if h.publisher == nil {
		return
	}
	products, err := h.service.ListAll(c.Context())
	if err != nil {
		log.Printf("Error loading products for broadcast: %v", err)
		return
	}
	if err := h.publisher.Publish(events.ProductsChange, products); err != nil {
		log.Printf("Error broadcasting products change: %v", err)
	}
}

// creationErrorMessage turns the first failed validation into the response
// message, e.g. "Invalid product price".
func creationErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return "Invalid product " + strings.ToLower(validationErrors[0].Field())
	}
	return "Invalid product information"
}
