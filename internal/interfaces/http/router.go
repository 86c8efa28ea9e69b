package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Leadius-api/internal/application/auth"
	"github.com/jhoicas/Leadius-api/internal/application/usecase"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	AccountUC *usecase.AccountUseCase
	LeadUC    *usecase.LeadUseCase
	Allocator Allocator
	Ingester  Ingester
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api", MetricsMiddleware())

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	accountHandler := NewAccountHandler(deps.AccountUC)
	api.Get("/pricing", accountHandler.Pricing)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/account", accountHandler.Me)

	leads := protected.Group("/leads")
	leadHandler := NewLeadHandler(deps.Allocator, deps.LeadUC)
	leads.Post("/allocate", leadHandler.Allocate)
	leads.Get("/", leadHandler.List)
	leads.Get("/stats", leadHandler.Stats)
	leads.Get("/export.pdf", leadHandler.Export)
	leads.Get("/:id", leadHandler.Get)
	leads.Patch("/:id/status", leadHandler.UpdateStatus)

	// Admin
	admin := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.AccountUC, deps.LeadUC, deps.Ingester)
	admin.Post("/credits", adminHandler.TopUp)
	admin.Post("/ingest", adminHandler.Ingest)
	admin.Get("/supply", adminHandler.Supply)
	admin.Get("/accounts/:id", adminHandler.Account)
}
