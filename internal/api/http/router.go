package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-service/internal/api/http/handlers"
	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Shipments      *handlers.ShipmentsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Paths under /api follow the legacy wire
// contract.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Live)
	api.Post("/register", cfg.Accounts.Register)
	api.Post("/login", cfg.Accounts.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Accounts.Logout)
	protected.Get("/home", auth.RequireAuthenticated(), cfg.Accounts.Home)

	anyRole := auth.RequireRole(domain.RoleAdmin, domain.RoleUser)
	protected.Get("/get", anyRole, cfg.Shipments.List)
	protected.Post("/create", anyRole, cfg.Shipments.Create)
	protected.Put("/update/:id", anyRole, cfg.Shipments.Update)
	protected.Delete("/delete/:id", anyRole, cfg.Shipments.Delete)
	protected.Get("/review_transaction/:id", anyRole, cfg.Shipments.Review)

	protected.Get("/pay/:id", auth.RequireRole(domain.RoleUser), cfg.Shipments.Pay)

	adminOnly := auth.RequireRole(domain.RoleAdmin)
	protected.Put("/update_delivery_status/:id", adminOnly, cfg.Admin.UpdateDeliveryStatus)
	protected.Post("/update_amount/:id", adminOnly, cfg.Admin.UpdateAmount)
	protected.Post("/update_delivery_date/:id", adminOnly, cfg.Admin.UpdateDeliveryDate)
	protected.Put("/update_delivery_date/:id", adminOnly, cfg.Admin.UpdateDeliveryDate)
}
