package routes

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Complaint *handlers.ComplaintHandler
	Admin     *handlers.AdminHandler
	Health    *handlers.HealthHandler
}

// Setup registers every route. limiterStorage may be nil for in-memory rate limiting.
func Setup(app *fiber.App, cfg *config.Config, tokens *services.TokenService, h Handlers, limiterStorage fiber.Storage) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/log.txt", h.Admin.RawLog)

	api := app.Group("/api")

	// General API rate limiter, per IP
	api.Use(middleware.RateLimit("api", cfg.RateLimitMax, limiterStorage))

	api.Get("/health", h.Health.Check)

	// Auth, with a stricter limit
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit("auth", cfg.AuthRateLimitMax, limiterStorage))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/profile", middleware.JWTProtected(tokens), h.Auth.Profile)

	complaints := api.Group("/complaints", middleware.JWTProtected(tokens))
	complaints.Get("/", h.Complaint.List)
	complaints.Post("/", h.Complaint.Create)
	// Registered before /:id so the literal segment wins.
	complaints.Put("/admin/:id", middleware.AdminRequired(), h.Complaint.UpdateStatus)
	complaints.Get("/:id", h.Complaint.Get)
	complaints.Put("/:id", h.Complaint.UpdateContent)
	complaints.Delete("/:id", h.Complaint.Delete)

	// Admin login is public and shares the auth limit.
	api.Post("/admin/login", middleware.RateLimit("admin_login", cfg.AuthRateLimitMax, limiterStorage), h.Auth.AdminLogin)

	admin := api.Group("/admin", middleware.JWTProtected(tokens), middleware.AdminRequired())
	admin.Get("/complaints", h.Complaint.AdminList)
	admin.Put("/complaints/:id/status", h.Complaint.AdminUpdateStatus)
	admin.Delete("/complaints/:id", h.Complaint.AdminDelete)
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/reports", h.Admin.Reports)
	admin.Get("/activities", h.Admin.Activities)
	admin.Get("/users", h.Admin.Users)
	admin.Get("/logs", h.Admin.Logs)
}
