package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/spf13/viper"

	"camisetas/internal/handlers"
	"camisetas/internal/middleware"
	"camisetas/internal/repositories"
	"camisetas/internal/services"
	"camisetas/pkg/events"
	"camisetas/pkg/mongodb"
	"camisetas/pkg/rabbitmq"
	"camisetas/pkg/realtime"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "pf_backend")
	viper.SetDefault("PUBLIC_URL", "http://localhost:8080")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	mongoURI := viper.GetString("MONGO_URI")
	mongoDB := viper.GetString("MONGO_DB")
	publicURL := viper.GetString("PUBLIC_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database connection ---
	client, err := mongodb.Connect(context.Background(), mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	db := client.Database(mongoDB)

	// --- Initialize Repositories ---
	productRepo := repositories.NewMongoProductRepository(db)
	cartRepo := repositories.NewMongoCartRepository(db)

	// --- Event publishers ---
	// The websocket hub feeds the realtime view; the RabbitMQ client, when
	// configured, fans the same events out to downstream consumers.
	hub := realtime.NewHub()
	publisher := events.Fanout{hub}

	if rabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = append(publisher, mqClient)
	}

	// --- Initialize Services ---
	productService := services.NewProductService(productRepo, publicURL)
	cartService := services.NewCartService(cartRepo, productRepo)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService, publisher)
	cartHandler := handlers.NewCartHandler(cartService)
	viewHandler := handlers.NewViewHandler(productService, cartService)

	// --- Initialize Fiber App ---
	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
	})

	// --- Middleware ---
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(middleware.ValidateJSON())
	app.Static("/", "./public")

	// --- API Routes ---
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api)

	// --- View Routes ---
	viewHandler.RegisterRoutes(app)

	// --- Realtime channel ---
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.HandleConnection))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"clients": hub.ClientCount(),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
