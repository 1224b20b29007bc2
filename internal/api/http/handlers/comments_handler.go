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

// CommentsHandler manages ticket comments.
type CommentsHandler struct {
	tickets *service.TicketService
	boards  *service.BoardService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(tickets *service.TicketService, boards *service.BoardService) *CommentsHandler {
	return &CommentsHandler{tickets: tickets, boards: boards}
}

// AddComment POST /tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	principal, ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.tickets.AddComment(c.UserContext(), principal.User.ID, ticket.ID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	_, ticket, err := h.requireTicket(c)
	if err != nil {
		return err
	}
	comments, err := h.tickets.ListComments(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// EditComment PUT /comments/:id.
func (h *CommentsHandler) EditComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.tickets.EditComment(c.UserContext(), principal.User.ID, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteComment DELETE /comments/:id.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.tickets.DeleteComment(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *CommentsHandler) requireTicket(c *fiber.Ctx) (*auth.Principal, *domain.Ticket, error) {
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

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		IsEdited:  comment.IsEdited,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
