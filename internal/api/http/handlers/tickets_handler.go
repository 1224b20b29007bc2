package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/api/dto"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/service"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

// TicketsHandler manages ticket CRUD and the audit-trail endpoint.
type TicketsHandler struct {
	tickets *service.TicketService
	boards  *service.BoardService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, boards *service.BoardService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, boards: boards}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.boards.EnsureMember(c.UserContext(), req.BoardID, principal.User.ID); err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), principal.User.ID, service.TicketCreateInput{
		BoardID:     req.BoardID,
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /boards/:id/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	boardID := c.Params("id")
	if err := h.boards.EnsureMember(c.UserContext(), boardID, principal.User.ID); err != nil {
		return err
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	tickets, err := h.tickets.ListBoardTickets(c.UserContext(), boardID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id. Absent fields are untouched; a null
// assignee_id unassigns.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    req.ColumnID,
		AssigneeID:  req.AssigneeID,
		SetAssignee: req.AssigneeSubmitted(),
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}

	updated, err := h.tickets.UpdateTicket(c.UserContext(), principal.User.ID, ticket.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), principal.User.ID, ticket.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	records, err := h.tickets.ListHistory(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.HistoryResponse{
			ID:        record.ID,
			TicketID:  record.TicketID,
			ActorID:   record.ActorID,
			Action:    string(record.Action),
			FieldName: record.FieldName,
			OldValue:  record.OldValue,
			NewValue:  record.NewValue,
			CreatedAt: record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// requireTicket loads the ticket from the path and gates on board
// membership of the caller.
func (h *TicketsHandler) requireTicket(c *fiber.Ctx) (*domain.Ticket, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if err := h.boards.EnsureMember(c.UserContext(), ticket.BoardID, principal.User.ID); err != nil {
		return nil, err
	}
	return ticket, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		BoardID:     ticket.BoardID,
		ColumnID:    ticket.ColumnID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    string(ticket.Priority),
		AssigneeID:  ticket.AssigneeID,
		CreatedByID: ticket.CreatedByID,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
