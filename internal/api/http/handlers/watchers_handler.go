package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/api/dto"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/service"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

// WatchersHandler manages explicit ticket watcher subscription.
type WatchersHandler struct {
	watchers *service.WatcherService
	tickets  *service.TicketService
	boards   *service.BoardService
}

// NewWatchersHandler constructs handler.
func NewWatchersHandler(watchers *service.WatcherService, tickets *service.TicketService, boards *service.BoardService) *WatchersHandler {
	return &WatchersHandler{watchers: watchers, tickets: tickets, boards: boards}
}

// AddWatcher POST /tickets/:id/watchers.
func (h *WatchersHandler) AddWatcher(c *fiber.Ctx) error {
	principal, ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	var req dto.WatcherRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	userID := req.UserID
	if userID == "" {
		userID = principal.User.ID
	}
	watcher, err := h.watchers.AddWatcher(c.UserContext(), principal.User.ID, ticket.ID, userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": watcherResponse(watcher)})
}

// RemoveWatcher DELETE /tickets/:id/watchers/:userId.
func (h *WatchersHandler) RemoveWatcher(c *fiber.Ctx) error {
	principal, ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	userID := c.Params("userId")
	if userID == "" {
		userID = principal.User.ID
	}
	if err := h.watchers.RemoveWatcher(c.UserContext(), principal.User.ID, ticket.ID, userID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListWatchers GET /tickets/:id/watchers.
func (h *WatchersHandler) ListWatchers(c *fiber.Ctx) error {
	_, ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	watchers, err := h.watchers.ListWatchers(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	items := make([]dto.WatcherResponse, 0, len(watchers))
	for i := range watchers {
		items = append(items, watcherResponse(&watchers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *WatchersHandler) requireTicket(c *fiber.Ctx) (*auth.Principal, *domain.Ticket, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, nil, apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	if err := h.boards.EnsureMember(c.UserContext(), ticket.BoardID, principal.User.ID); err != nil {
		return nil, nil, err
	}
	return principal, ticket, nil
}

func watcherResponse(watcher *domain.Watcher) dto.WatcherResponse {
	return dto.WatcherResponse{
		ID:        watcher.ID,
		TicketID:  watcher.TicketID,
		UserID:    watcher.UserID,
		AddedByID: watcher.AddedByID,
		CreatedAt: watcher.CreatedAt,
	}
}
