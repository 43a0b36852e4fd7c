package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"camisetas/internal/handlers"
	"camisetas/internal/middleware"
	"camisetas/internal/repositories"
	"camisetas/internal/services"
)

// recordingPublisher captures broadcast events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// setupApp wires the API routes against in-memory repositories.
func setupApp() (*fiber.App, *repositories.MockProductRepository, *recordingPublisher) {
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()

	productService := services.NewProductService(productRepo, "http://localhost:8080")
	cartService := services.NewCartService(cartRepo, productRepo)

	publisher := &recordingPublisher{}
	productHandler := handlers.NewProductHandler(productService, publisher)
	cartHandler := handlers.NewCartHandler(cartService)

	app := fiber.New()
	app.Use(middleware.ValidateJSON())

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api)

	return app, productRepo, publisher
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var decoded map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func validShirt() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Shirt",
		"description": "d",
		"code":        "c1",
		"price":       100,
		"status":      true,
		"stock":       5,
		"category":    "Camisetas locales",
	}
}

// createProduct posts the payload and returns the assigned id.
func createProduct(t *testing.T, app *fiber.App, payload map[string]interface{}) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/products", payload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	assert.NotEmpty(t, id)
	return id
}

// createCart posts to /api/carts and extracts the new cart id from the
// response message.
func createCart(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/carts", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	message, _ := body["message"].(string)
	id := strings.TrimPrefix(message, "Cart created with id: ")
	assert.NotEqual(t, message, id)
	return id
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestProductCreationValidation(t *testing.T) {
	app, _, _ := setupApp()

	// Missing everything.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/products", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing the product information", decodeBody(t, resp)["error"])

	// status:false is rejected by the creation validator.
	payload := validShirt()
	payload["status"] = false
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/products", payload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid product status", decodeBody(t, resp)["error"])

	// Zero price is indistinguishable from a missing one.
	payload = validShirt()
	payload["price"] = 0
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/products", payload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid product price", decodeBody(t, resp)["error"])

	// Wrong type for a field.
	payload = validShirt()
	payload["price"] = "expensive"
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/products", payload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Valid payload succeeds.
	createProduct(t, app, validShirt())
}

func TestInvalidJSONBody(t *testing.T) {
	app, _, _ := setupApp()

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON in request body", decodeBody(t, resp)["error"])
}

func TestInvalidObjectIDs(t *testing.T) {
	app, _, _ := setupApp()

	for _, target := range []string{
		"/api/products/not-an-id",
		"/api/carts/not-an-id",
	} {
		resp, err := app.Test(jsonRequest(http.MethodGet, target, nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid object id", decodeBody(t, resp)["error"])
	}
}

func TestProductCRUDFlow(t *testing.T) {
	app, _, _ := setupApp()

	id := createProduct(t, app, validShirt())

	// Read it back: all seven fields survive the round trip.
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/products/"+id, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Product found successfully", body["message"])
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Shirt", product["title"])
	assert.Equal(t, "d", product["description"])
	assert.Equal(t, "c1", product["code"])
	assert.Equal(t, float64(100), product["price"])
	assert.Equal(t, true, product["status"])
	assert.Equal(t, float64(5), product["stock"])
	assert.Equal(t, "Camisetas locales", product["category"])

	// Partial update: only the supplied field changes, and a zero price is
	// treated as not supplied.
	resp, err = app.Test(jsonRequest(http.MethodPut, "/api/products/"+id, map[string]interface{}{
		"title": "Shirt 2025",
		"price": 0,
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products/"+id, nil), -1)
	assert.NoError(t, err)
	product = decodeBody(t, resp)["product"].(map[string]interface{})
	assert.Equal(t, "Shirt 2025", product["title"])
	assert.Equal(t, float64(100), product["price"])

	// Delete and verify.
	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/products/"+id, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products/"+id, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", decodeBody(t, resp)["error"])
}

func TestProductListPagination(t *testing.T) {
	app, _, _ := setupApp()

	for i := 0; i < 12; i++ {
		payload := validShirt()
		payload["title"] = fmt.Sprintf("Shirt %d", i)
		payload["price"] = 100 + i
		if i%2 == 1 {
			payload["category"] = "Camisetas de portero"
		}
		createProduct(t, app, payload)
	}

	// Page 2 of 3 with an explicit limit.
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/products?limit=5&page=2", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.Len(t, body["payload"], 5)
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, true, body["hasPrevPage"])
	assert.Equal(t, true, body["hasNextPage"])
	assert.Equal(t, "http://localhost:8080/api/products?limit=5&page=1", body["prevLink"])
	assert.Equal(t, "http://localhost:8080/api/products?limit=5&page=3", body["nextLink"])

	// Last page: nextLink is null exactly when hasNextPage is false.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products?limit=5&page=3", nil), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Len(t, body["payload"], 2)
	assert.Equal(t, false, body["hasNextPage"])
	assert.Nil(t, body["nextLink"])
	assert.NotNil(t, body["prevLink"])

	// Category token filters strictly.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products?category=goalkeeper&limit=20", nil), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	payload := body["payload"].([]interface{})
	assert.Len(t, payload, 6)
	for _, item := range payload {
		assert.Equal(t, "Camisetas de portero", item.(map[string]interface{})["category"])
	}

	// Price sort descending.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products?sort=desc&limit=3", nil), -1)
	assert.NoError(t, err)
	body = decodeBody(t, resp)
	payload = body["payload"].([]interface{})
	assert.Equal(t, float64(111), payload[0].(map[string]interface{})["price"])
	assert.Equal(t, "http://localhost:8080/api/products?limit=3&page=2&sort=desc", body["nextLink"])

	// An out-of-range page is empty and answered with 404.
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/products?limit=5&page=99", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No products found", decodeBody(t, resp)["error"])
}

func TestCartFlow(t *testing.T) {
	app, _, _ := setupApp()

	pid := createProduct(t, app, validShirt())
	cid := createCart(t, app)

	addOnce := func() {
		resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid), nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	getLines := func() []interface{} {
		resp, err := app.Test(jsonRequest(http.MethodGet, "/api/carts/"+cid, nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		cart := decodeBody(t, resp)["cart"].(map[string]interface{})
		return cart["products"].([]interface{})
	}

	// Adding the same product twice yields one line with quantity 2.
	addOnce()
	addOnce()
	lines := getLines()
	assert.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, "Shirt", line["product"].(map[string]interface{})["title"])

	// Updating the line's quantity adds on top.
	resp, err := app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid),
		map[string]interface{}{"quantity": 3}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	lines = getLines()
	assert.Equal(t, float64(5), lines[0].(map[string]interface{})["quantity"])

	// Removing the line leaves the cart empty.
	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid), nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, getLines())

	// A quantity update for a product not in the cart is a 404.
	resp, err = app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid),
		map[string]interface{}{"quantity": 3}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not in cart", decodeBody(t, resp)["error"])
}

func TestCartBulkUpdateIncrements(t *testing.T) {
	app, _, _ := setupApp()

	p1 := createProduct(t, app, validShirt())
	payload := validShirt()
	payload["title"] = "Away Shirt"
	p2 := createProduct(t, app, payload)
	cid := createCart(t, app)

	bulk := []map[string]interface{}{
		{"product": p1, "quantity": 2},
		{"product": p2, "quantity": 1},
	}

	apply := func() {
		resp, err := app.Test(jsonRequest(http.MethodPut, "/api/carts/"+cid, bulk), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	apply()
	// The bulk endpoint increments rather than overwrites: a second
	// identical PUT doubles every quantity.
	apply()

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/carts/"+cid, nil), -1)
	assert.NoError(t, err)
	cart := decodeBody(t, resp)["cart"].(map[string]interface{})
	lines := cart["products"].([]interface{})
	assert.Len(t, lines, 2)
	quantities := map[string]float64{}
	for _, raw := range lines {
		l := raw.(map[string]interface{})
		pid := l["product"].(map[string]interface{})["id"].(string)
		quantities[pid] = l["quantity"].(float64)
	}
	assert.Equal(t, float64(4), quantities[p1])
	assert.Equal(t, float64(2), quantities[p2])

	// A reference to a nonexistent product rejects the whole update.
	resp, err = app.Test(jsonRequest(http.MethodPut, "/api/carts/"+cid, []map[string]interface{}{
		{"product": "aaaaaaaaaaaaaaaaaaaaaaaa", "quantity": 1},
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Products not found", decodeBody(t, resp)["error"])

	// Entries missing a field are a 400.
	resp, err = app.Test(jsonRequest(http.MethodPut, "/api/carts/"+cid, []map[string]interface{}{
		{"product": p1},
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Products are missing information", decodeBody(t, resp)["error"])
}

func TestEmptyCart(t *testing.T) {
	app, _, _ := setupApp()

	pid := createProduct(t, app, validShirt())
	cid := createCart(t, app)

	resp, err := app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid), nil), -1)
	assert.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/carts/"+cid, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/carts/"+cid, nil), -1)
	assert.NoError(t, err)
	cart := decodeBody(t, resp)["cart"].(map[string]interface{})
	assert.Empty(t, cart["products"])

	// Emptying a nonexistent cart is a 404.
	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/carts/aaaaaaaaaaaaaaaaaaaaaaaa", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Cart not found", decodeBody(t, resp)["error"])
}

func TestProductMutationsBroadcast(t *testing.T) {
	app, _, publisher := setupApp()

	id := createProduct(t, app, validShirt())

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/products/"+id, map[string]interface{}{"title": "x"}), -1)
	assert.NoError(t, err)
	resp.Body.Close()
	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/products/"+id, nil), -1)
	assert.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"productsChange", "productsChange", "productsChange"}, publisher.Events())

	// Cart mutations do not broadcast.
	pid := createProduct(t, app, validShirt())
	cid := createCart(t, app)
	resp, err = app.Test(jsonRequest(http.MethodPost, fmt.Sprintf("/api/carts/%s/products/%s", cid, pid), nil), -1)
	assert.NoError(t, err)
	resp.Body.Close()

	assert.Len(t, publisher.Events(), 4) // only the fourth product creation
}
