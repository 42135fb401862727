package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harvest/internal/config"
	"harvest/internal/models"
	"harvest/internal/pricing"
	"harvest/internal/repositories"
	"harvest/internal/server"
	"harvest/internal/services"
	"harvest/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := openDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.Order{}, &models.Payment{}, &models.LandingPageMedia{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	mediaRepo := repositories.NewGORMMediaRepository(db)
	uow := repositories.NewGORMUnitOfWork(db)

	// --- Infrastructure ---
	engine, err := pricing.NewEngine(pricing.Model(cfg.DiscountModel))
	if err != nil {
		log.Fatalf("Failed to configure pricing: %v", err)
	}
	log.Printf("Discount model: %s", engine.Model())

	locker, closeLocker, err := buildLocker(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize order locks: %v", err)
	}
	defer closeLocker()

	gateway, err := buildGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	mail := buildMailer(cfg)
	authService := services.NewAuthService(userRepo, mail, services.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenDuration: cfg.JWTExpiresIn,
		AllowDevOTP:   cfg.AllowDevOTP && !cfg.IsProduction(),
	})

	if len(os.Args) > 1 && os.Args[1] == "create-admin" {
		if err := createAdmin(authService, os.Args[2:]); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		return
	}

	// --- Notifications ---
	emailNotifier := services.NewEmailNotifier(userRepo, productRepo, mail)
	var notifier services.Notifier = emailNotifier
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		notifier = services.NewBrokerNotifier(mqClient)

		go func() {
			log.Println("Starting RabbitMQ consumer for order notifications...")
			handler := func(msg amqp.Delivery) error {
				return emailNotifier.HandleDelivery(msg)
			}
			if err := mqClient.ConsumeOrderEvents(handler); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set, sending order notifications inline")
	}

	// --- Services ---
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, engine, locker, notifier)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, productRepo, uow, gateway, locker, notifier,
		services.PaymentConfig{
			Currency:     cfg.PaymentCurrency,
			FrontendURL:  cfg.FrontendURL,
			TestPayments: cfg.TestPaymentsAllowed(),
		})

	app := server.New(server.Services{
		Auth:     authService,
		Products: services.NewProductService(productRepo),
		Carts:    services.NewCartService(cartRepo, productRepo),
		Orders:   orderService,
		Payments: paymentService,
		Admin:    services.NewAdminService(userRepo, productRepo, orderRepo, paymentRepo),
		Media:    services.NewMediaService(mediaRepo, locker),
	}, server.Options{CORSOrigins: cfg.CORSOrigins})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s (%s)", cfg.AppPort, cfg.AppEnv)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	emailNotifier.Wait()
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

// createAdmin handles `create-admin [email password [name]]`. Missing
// arguments are read from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME.
func createAdmin(authService *services.AuthService, args []string) error {
	email, password, name := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"), os.Getenv("ADMIN_NAME")
	if len(args) >= 2 {
		email, password = args[0], args[1]
	}
	if len(args) >= 3 {
		name = args[2]
	}
	if name == "" {
		name = "Administrator"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := authService.CreateAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	log.Printf("Admin %s (%s) is ready", user.Email, user.ID)
	return nil
}
