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

// BoardsHandler manages board, column and membership endpoints.
type BoardsHandler struct {
	boards *service.BoardService
}

// NewBoardsHandler constructs handler.
func NewBoardsHandler(boards *service.BoardService) *BoardsHandler {
	return &BoardsHandler{boards: boards}
}

// CreateBoard POST /boards.
func (h *BoardsHandler) CreateBoard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	board, err := h.boards.CreateBoard(c.UserContext(), principal.User.ID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": boardResponse(board, nil)})
}

// ListBoards GET /boards.
func (h *BoardsHandler) ListBoards(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	boards, err := h.boards.ListBoards(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.BoardResponse, 0, len(boards))
	for i := range boards {
		items = append(items, boardResponse(&boards[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetBoard GET /boards/:id.
func (h *BoardsHandler) GetBoard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	boardID := c.Params("id")
	if err := h.boards.EnsureMember(c.UserContext(), boardID, principal.User.ID); err != nil {
		return err
	}
	board, columns, err := h.boards.GetBoard(c.UserContext(), boardID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": boardResponse(board, columns)})
}

// DeleteBoard DELETE /boards/:id.
func (h *BoardsHandler) DeleteBoard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.boards.DeleteBoard(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMembers GET /boards/:id/members.
func (h *BoardsHandler) ListMembers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	boardID := c.Params("id")
	if err := h.boards.EnsureMember(c.UserContext(), boardID, principal.User.ID); err != nil {
		return err
	}
	members, err := h.boards.ListMembers(c.UserContext(), boardID)
	if err != nil {
		return err
	}
	items := make([]dto.MemberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, dto.MemberResponse{
			ID:      member.ID,
			BoardID: member.BoardID,
			UserID:  member.UserID,
			Role:    string(member.Role),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMember POST /boards/:id/members.
func (h *BoardsHandler) AddMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.boards.AddMember(c.UserContext(), principal.User.ID, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.MemberResponse{
		ID:      member.ID,
		BoardID: member.BoardID,
		UserID:  member.UserID,
		Role:    string(member.Role),
	}})
}

// RemoveMember DELETE /boards/:id/members/:userId.
func (h *BoardsHandler) RemoveMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.boards.RemoveMember(c.UserContext(), principal.User.ID, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateColumn POST /boards/:id/columns.
func (h *BoardsHandler) CreateColumn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ColumnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	column, err := h.boards.CreateColumn(c.UserContext(), principal.User.ID, c.Params("id"), req.Name, req.Position)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": columnResponse(column)})
}

// UpdateColumn PUT /columns/:id.
func (h *BoardsHandler) UpdateColumn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ColumnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	column, err := h.boards.UpdateColumn(c.UserContext(), principal.User.ID, c.Params("id"), req.Name, req.Position)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": columnResponse(column)})
}

// DeleteColumn DELETE /columns/:id.
func (h *BoardsHandler) DeleteColumn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.boards.DeleteColumn(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func boardResponse(board *domain.Board, columns []domain.Column) dto.BoardResponse {
	resp := dto.BoardResponse{
		ID:        board.ID,
		Name:      board.Name,
		OwnerID:   board.OwnerID,
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
	}
	for i := range columns {
		resp.Columns = append(resp.Columns, columnResponse(&columns[i]))
	}
	return resp
}

func columnResponse(column *domain.Column) dto.ColumnResponse {
	return dto.ColumnResponse{
		ID:       column.ID,
		BoardID:  column.BoardID,
		Name:     column.Name,
		Position: column.Position,
	}
}
