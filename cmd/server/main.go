package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"clinicq/internal/adapters/http/middleware"
	"clinicq/internal/adapters/http/routes"
	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "clinicq/docs" // Swagger docs
)

// @title ClinicQ API
// @version 1.0
// @description Multi-tenant clinic queue and token orchestration API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clinicq.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.clinicq.dev
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}

	// Seed demo data in dev mode
	if cfg.IsDev() {
		if err := config.SeedDemoData(db); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo data: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ClinicQ API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	autoService := routes.Setup(app, db, cfg)

	// Background jobs: end-of-day carryover + appointment no-show sweep
	if err := autoService.Start(); err != nil {
		log.Fatalf("❌ Failed to start background jobs: %v", err)
	}
	defer autoService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
