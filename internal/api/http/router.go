package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/api/http/handlers"
	"github.com/spec-kit/board-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Boards         *handlers.BoardsHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Watchers       *handlers.WatchersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Get("/users/me", cfg.Users.Me)

	api.Post("/boards", cfg.Boards.CreateBoard)
	api.Get("/boards", cfg.Boards.ListBoards)
	api.Get("/boards/:id", cfg.Boards.GetBoard)
	api.Delete("/boards/:id", cfg.Boards.DeleteBoard)

	api.Get("/boards/:id/members", cfg.Boards.ListMembers)
	api.Post("/boards/:id/members", cfg.Boards.AddMember)
	api.Delete("/boards/:id/members/:userId", cfg.Boards.RemoveMember)

	api.Post("/boards/:id/columns", cfg.Boards.CreateColumn)
	api.Put("/columns/:id", cfg.Boards.UpdateColumn)
	api.Delete("/columns/:id", cfg.Boards.DeleteColumn)

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/boards/:id/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	api.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
	api.Get("/tickets/:id/history", cfg.Tickets.History)

	api.Post("/tickets/:id/comments", cfg.Comments.AddComment)
	api.Get("/tickets/:id/comments", cfg.Comments.ListComments)
	api.Put("/comments/:id", cfg.Comments.EditComment)
	api.Delete("/comments/:id", cfg.Comments.DeleteComment)

	api.Post("/tickets/:id/watchers", cfg.Watchers.AddWatcher)
	api.Get("/tickets/:id/watchers", cfg.Watchers.ListWatchers)
	api.Delete("/tickets/:id/watchers/:userId", cfg.Watchers.RemoveWatcher)
}
