package routes

import (
	"clinicq/internal/adapters/http/handlers"
	"clinicq/internal/adapters/http/middleware"
	"clinicq/internal/adapters/persistence/repositories"
	"clinicq/internal/config"
	"clinicq/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services, handlers and routes, and returns the
// background auto service so the caller controls its lifecycle
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.QueueAutoService {
	// Repositories
	configRepo := repositories.NewConfigRepository(db)
	visitRepo := repositories.NewVisitRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	staffRepo := repositories.NewStaffRepository(db)

	// SSE hub doubles as the queue event publisher
	hub := services.NewSSEHub()

	// Services
	policyService := services.NewPolicyService(configRepo)
	tokenService := services.NewTokenService(tokenRepo)
	historyService := services.NewHistoryService(historyRepo)
	configService := services.NewConfigService(configRepo)
	queueService := services.NewQueueService(
		visitRepo,
		configRepo,
		policyService,
		tokenService,
		historyService,
		appointmentRepo,
		hub,
	)
	appointmentService := services.NewAppointmentService(appointmentRepo, configRepo, policyService)
	autoService := services.NewQueueAutoService(queueService, configRepo, appointmentRepo, policyService)
	authService := services.NewAuthService(staffRepo, cfg)
	staffService := services.NewStaffService(staffRepo)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	queueHandler := handlers.NewQueueHandler(queueService)
	queueAdminHandler := handlers.NewQueueAdminHandler(queueService, configService, historyService, policyService)
	displayHandler := handlers.NewQueueDisplayHandler(queueService, hub)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	staffHandler := handlers.NewStaffHandler(staffService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Public routes: tracking and display boards need no auth
	setupPublicRoutes(apiV1, queueHandler, displayHandler)

	// Auth routes
	setupAuthRoutes(apiV1, authHandler, cfg)

	// Staff queue routes
	queueRoutes := apiV1.Group("/queue")
	queueRoutes.Use(middleware.AuthMiddleware(cfg))
	queueRoutes.Use(middleware.StaffOnly())
	setupQueueRoutes(queueRoutes, queueHandler, dashboardHandler)

	// Appointment routes
	setupAppointmentRoutes(apiV1, appointmentHandler, cfg)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, queueAdminHandler, staffHandler, dashboardHandler)

	return autoService
}

// setupAuthRoutes configures the staff authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	auth := router.Group("/auth")
	auth.Post("/login", middleware.ActionRateLimiter(), handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	auth.Put("/password", middleware.AuthMiddleware(cfg), handler.ChangePassword)
}

// setupPublicRoutes configures the unauthenticated endpoints
func setupPublicRoutes(router fiber.Router, queueHandler *handlers.QueueHandler, displayHandler *handlers.QueueDisplayHandler) {
	// Patient-facing token tracking
	router.Get("/queue/track/:hospital_id/:token_code",
		middleware.NoCacheHeaders(), queueHandler.TrackToken)

	// Waiting-room display boards
	display := router.Group("/display")
	display.Get("/departments/:id", middleware.NoCacheHeaders(), displayHandler.GetDepartmentBoard)
	display.Get("/hospitals/:id/events", displayHandler.StreamEvents)
}

// setupQueueRoutes configures the reception/doctor queue routes
func setupQueueRoutes(router fiber.Router, handler *handlers.QueueHandler, dashboardHandler *handlers.DashboardHandler) {
	// Live queue views
	router.Get("/doctors/:id", middleware.NoCacheHeaders(), handler.GetDoctorQueue)
	router.Get("/doctors/:id/dashboard", middleware.NoCacheHeaders(), dashboardHandler.GetDoctorDashboard)
	router.Get("/departments/:id", middleware.NoCacheHeaders(), handler.GetDepartmentQueue)

	// Check-in
	router.Post("/check-in", middleware.ActionRateLimiter(), handler.CheckIn)

	// Doctor console
	router.Post("/doctors/:id/call-next", handler.CallNext)
	router.Post("/doctors/:id/delay", handler.DelayDoctor)

	// Visit actions
	router.Post("/visits/:id/complete", handler.Complete)
	router.Post("/visits/:id/skip", handler.Skip)
	router.Post("/visits/:id/hold", handler.Hold)
	router.Post("/visits/:id/resume", handler.Resume)
	router.Post("/visits/:id/cancel", handler.Cancel)
	router.Post("/visits/:id/no-show", handler.NoShow)
	router.Post("/visits/:id/reassign", handler.Reassign)
}

// setupAppointmentRoutes configures booking routes (staff-operated)
func setupAppointmentRoutes(router fiber.Router, handler *handlers.AppointmentHandler, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)
	staff := middleware.StaffOnly()

	router.Post("/hospitals/:id/appointments", auth, staff, middleware.ActionRateLimiter(), handler.Book)
	router.Get("/appointments/:id", auth, staff, handler.Get)
	router.Post("/appointments/:id/confirm", auth, staff, handler.Confirm)
	router.Post("/appointments/:id/cancel", auth, staff, handler.Cancel)
	router.Get("/patients/:id/appointments", auth, staff, handler.ListByPatient)
}

// setupAdminRoutes configures configuration, staff and reporting routes
func setupAdminRoutes(router fiber.Router, handler *handlers.QueueAdminHandler, staffHandler *handlers.StaffHandler, dashboardHandler *handlers.DashboardHandler) {
	// Hospital & department configuration
	router.Get("/hospitals/:id/config", handler.GetHospitalConfig)
	router.Put("/hospitals/:id/config", handler.UpdateHospitalConfig)
	router.Get("/hospitals/:id/departments/:dept_id/policy", handler.GetEffectivePolicy)
	router.Put("/hospitals/:id/departments/:dept_id/config", handler.UpsertDepartmentConfig)

	// Doctor availability
	router.Put("/doctors/:id/status", handler.SetDoctorStatus)
	router.Post("/doctors/:id/leave", handler.DoctorLeave)

	// Staff accounts
	router.Post("/staff", staffHandler.CreateStaff)
	router.Get("/staff", staffHandler.ListStaff)
	router.Get("/staff/:id", staffHandler.GetStaff)
	router.Put("/staff/:id", staffHandler.UpdateStaff)
	router.Delete("/staff/:id", staffHandler.DeleteStaff)

	// Maintenance & reporting
	router.Get("/hospitals/:id/dashboard", dashboardHandler.GetHospitalDashboard)
	router.Post("/hospitals/:id/carryover", handler.TriggerCarryover)
	router.Get("/hospitals/:id/history", handler.GetHistory)
}
