// Package server assembles the Fiber application and its routes.
package server

import (
	"time"

	"harvest/internal/handlers"
	"harvest/internal/middleware"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services are the application services the routes delegate to.
type Services struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Admin    *services.AdminService
	Media    *services.MediaService
}

// Options tune the HTTP layer.
type Options struct {
	AppName     string
	CORSOrigins string
	// DisableLogger turns off request logging, mostly for tests.
	DisableLogger bool
}

// New builds the Fiber app with every route registered.
func New(svc Services, opts Options) *fiber.App {
	if opts.AppName == "" {
		opts.AppName = "Earth & Harvest API"
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	if !opts.DisableLogger {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   opts.AppName,
			"timestamp": time.Now().UTC(),
		})
	})

	auth := middleware.AuthRequired(svc.Auth)
	api := app.Group("/api")

	productHandler := handlers.NewProductHandler(svc.Products)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Admin)
	adminHandler := handlers.NewAdminHandler(svc.Admin)
	mediaHandler := handlers.NewMediaHandler(svc.Media)

	productHandler.RegisterRoutes(api)
	mediaHandler.RegisterRoutes(api)
	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(api, auth)
	paymentHandler.RegisterRoutes(api, auth)

	handlers.NewCartHandler(svc.Carts).RegisterRoutes(api, auth)
	orderHandler.RegisterRoutes(api, auth)

	admin := api.Group("/admin", auth, middleware.AdminRequired())
	adminHandler.RegisterRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	paymentHandler.RegisterAdminRoutes(admin)
	mediaHandler.RegisterAdminRoutes(admin)

	app.Use(handlers.NotFound)
	return app
}
