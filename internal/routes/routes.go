package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/example/codbridge/internal/config"
	"github.com/example/codbridge/internal/handlers"
	"github.com/example/codbridge/internal/middleware"
	"github.com/example/codbridge/internal/services"
	"github.com/example/codbridge/internal/store"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	shops := store.NewGormShopDirectory(db)
	verifications := store.NewGormVerificationStore(db)
	orders := store.NewGormOrderStore(db)
	pixels := store.NewGormPixelDirectory(db)

	smsService := services.NewSMSService(cfg.SMSDeviceID, cfg.SMSClientID, cfg.SMSClientSecret, cfg.SMSSendSpeed)
	shopifyService := services.NewShopifyService(cfg.CommerceTimeout)
	metaService := services.NewMetaService(pixels, cfg.TrackingTimeout)

	verificationService := services.NewVerificationService(verifications, smsService)
	orderService := services.NewOrderService(shops, orders, shopifyService, metaService)

	verificationHandler := handlers.NewVerificationHandler(verificationService)
	orderHandler := handlers.NewOrderHandler(orderService, shops, orders)
	authHandler := handlers.NewAuthHandler(shops, cfg)
	settingsHandler := handlers.NewSettingsHandler(shops)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Storefront-facing routes; the checkout popup lives on the shop domain.
	storefront := api.Group("", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))

	verification := storefront.Group("/verification")
	verification.Post("/codes", verificationHandler.RequestCode)
	verification.Post("/codes/verify", verificationHandler.VerifyCode)

	storefront.Post("/orders", orderHandler.Create)

	// OAuth install flow.
	auth := api.Group("/auth")
	auth.Get("/", authHandler.Install)
	auth.Get("/callback", authHandler.Callback)

	// Webhooks.
	api.Post("/webhooks/app/uninstalled", authHandler.Uninstalled)

	// Embedded admin panel routes, session-token protected.
	admin := api.Group("", middleware.ShopAuthMiddleware(cfg))
	admin.Get("/orders", orderHandler.List)
	admin.Get("/settings", settingsHandler.Get)
	admin.Put("/settings", settingsHandler.Update)
}
