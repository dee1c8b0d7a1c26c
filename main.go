package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"ecofinds/internal/handlers"
	"ecofinds/internal/middleware"
	"ecofinds/internal/repositories"
	"ecofinds/internal/services"
	"ecofinds/pkg/kvstore"
	"ecofinds/pkg/rabbitmq"
	"ecofinds/pkg/restdb"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("SUPABASE_URL", "")
	viper.SetDefault("SUPABASE_ANON_KEY", "")
	viper.SetDefault("LOCAL_STORE_PATH", "ecofinds.db")
	viper.SetDefault("JWT_SECRET", "ecofinds-dev-secret")
	viper.SetDefault("REMOTE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	backendURL := viper.GetString("SUPABASE_URL")
	backendKey := viper.GetString("SUPABASE_ANON_KEY")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Local Key-Value Store ---
	// The local store is always opened: it backs Local mode outright and
	// catches per-operation fallbacks in Remote mode.
	kv, err := kvstore.Open(viper.GetString("LOCAL_STORE_PATH"))
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	// --- Remote Backend Client ---
	// Only configured when both the URL and the key are present; otherwise
	// the app runs in Local mode from the start.
	var remote *restdb.Client
	if backendURL != "" && backendKey != "" {
		timeout := time.Duration(viper.GetInt("REMOTE_TIMEOUT_SECONDS")) * time.Second
		remote = restdb.New(backendURL, backendKey, timeout)
	} else {
		log.Println("No backend credentials configured, running in local mode")
	}

	// --- RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, continuing without events: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Session ---
	session := services.NewSessionService(remote, kv, viper.GetString("JWT_SECRET"))
	session.Initialize(context.Background())
	log.Printf("Data access mode: %s", session.Mode())

	// --- Repositories ---
	var (
		remoteProducts repositories.ProductRepository
		remoteCart     repositories.CartRepository
		remotePurchase repositories.PurchaseRepository
		remoteProfile  repositories.ProfileRepository
	)
	if remote != nil {
		remoteProducts = repositories.NewRemoteProductRepository(remote)
		remoteCart = repositories.NewRemoteCartRepository(remote)
		remotePurchase = repositories.NewRemotePurchaseRepository(remote)
		remoteProfile = repositories.NewRemoteProfileRepository(remote)
	}
	localProducts := repositories.NewLocalProductRepository(kv)
	localCart := repositories.NewLocalCartRepository(kv)
	localPurchase := repositories.NewLocalPurchaseRepository(kv)
	localProfile := repositories.NewLocalProfileRepository(kv)

	// --- Services ---
	state := services.NewState()
	productService := services.NewProductService(session, remoteProducts, localProducts, state)
	purchaseService := services.NewPurchaseService(session, remotePurchase, localPurchase, state)
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}
	cartService := services.NewCartService(session, remoteCart, localCart, productService, purchaseService, state, events)
	profileService := services.NewProfileService(session, remoteProfile, localProfile)
	dashboardService := services.NewDashboardService(productService, purchaseService)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(session, state)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	profileHandler := handlers.NewProfileHandler(profileService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	authRequired := middleware.AuthRequired(session)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, authRequired)
	productHandler.RegisterRoutes(apiV1, authRequired)
	cartHandler.RegisterRoutes(apiV1, authRequired)
	purchaseHandler.RegisterRoutes(apiV1, authRequired)
	profileHandler.RegisterRoutes(apiV1, authRequired)
	dashboardHandler.RegisterRoutes(apiV1, authRequired)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"mode":   session.Mode().String(),
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- RabbitMQ Consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for purchase events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received purchase event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumePurchaseEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s", appPort)

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
