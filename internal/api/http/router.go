package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/verified-account/:token", cfg.Users.ConfirmVerification)
	users.Post("/restore-password", cfg.Users.RequestPasswordReset)
	users.Put("/:uid/reset-password/:token", cfg.Users.ResetPassword)

	protected := users.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Users.Logout)
	protected.Get("/verify-account", cfg.Users.RequestVerification)
	protected.Post("/account-closure", cfg.Users.StartClosure)
	protected.Put("/premium/:uid", cfg.Users.PromoteToPremium)
	protected.Post("/:uid/documents", cfg.Users.SaveDocuments)
	protected.Get("/current", cfg.Users.ListUsers)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListPurchases)
}
