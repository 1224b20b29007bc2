package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/repository"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

// BoardService manages boards, columns and membership.
type BoardService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBoardService constructs the service.
func NewBoardService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *BoardService {
	return &BoardService{store: store, dispatcher: dispatcher, logger: logger}
}

// CreateBoard creates a board owned by ownerID; the owner becomes its
// first member.
func (s *BoardService) CreateBoard(ctx context.Context, ownerID, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	board := &domain.Board{Name: name, OwnerID: ownerID}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Boards().Create(ctx, board); err != nil {
			return apperrors.MapError(err)
		}
		if _, err := tx.Members().Add(ctx, &domain.BoardMember{
			BoardID: board.ID,
			UserID:  ownerID,
			Role:    domain.BoardRoleOwner,
		}); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// ListBoards returns boards the user is a member of.
func (s *BoardService) ListBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	boards, err := s.store.Boards().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return boards, nil
}

// GetBoard fetches a board with its columns.
func (s *BoardService) GetBoard(ctx context.Context, boardID string) (*domain.Board, []domain.Column, error) {
	board, err := s.store.Boards().GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, boardErr(err, boardID)
	}
	columns, err := s.store.Columns().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return board, columns, nil
}

// DeleteBoard destroys a board and everything it owns, then announces
// BOARD_DELETED to remaining viewers. Only the owner may delete.
func (s *BoardService) DeleteBoard(ctx context.Context, actorID, boardID string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		board, err := tx.Boards().GetByID(ctx, boardID)
		if err != nil {
			return boardErr(err, boardID)
		}
		if board.OwnerID != actorID {
			return apperrors.NewForbidden("only the board owner can delete it")
		}
		if err := tx.Boards().Delete(ctx, boardID); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, events.EventBoardDeleted, boardID, boardID)
	return nil
}

// EnsureMember verifies boardID membership for userID; used by the HTTP
// layer to gate mutations before the core runs.
func (s *BoardService) EnsureMember(ctx context.Context, boardID, userID string) error {
	isMember, err := s.store.Members().IsMember(ctx, boardID, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !isMember {
		return apperrors.NewForbidden("not a member of this board")
	}
	return nil
}

// AddMember adds a user to a board. Only the owner may manage members.
func (s *BoardService) AddMember(ctx context.Context, actorID, boardID, userID string) (*domain.BoardMember, error) {
	var member *domain.BoardMember
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		board, err := tx.Boards().GetByID(ctx, boardID)
		if err != nil {
			return boardErr(err, boardID)
		}
		if board.OwnerID != actorID {
			return apperrors.NewForbidden("only the board owner can manage members")
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return apperrors.MapError(err)
		}
		member, err = tx.Members().Add(ctx, &domain.BoardMember{
			BoardID: boardID,
			UserID:  userID,
			Role:    domain.BoardRoleMember,
		})
		if err != nil {
			return apperrors.MapError(err)
		}
		if member == nil {
			return apperrors.NewConflict("user is already a member", map[string]any{"user_id": userID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a user from a board. The owner cannot be removed.
func (s *BoardService) RemoveMember(ctx context.Context, actorID, boardID, userID string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		board, err := tx.Boards().GetByID(ctx, boardID)
		if err != nil {
			return boardErr(err, boardID)
		}
		if board.OwnerID != actorID && actorID != userID {
			return apperrors.NewForbidden("only the board owner can remove other members")
		}
		if board.OwnerID == userID {
			return apperrors.NewConflict("board owner cannot be removed", nil)
		}
		removed, err := tx.Members().Remove(ctx, boardID, userID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !removed {
			return apperrors.NewNotFound("member", map[string]any{"user_id": userID})
		}
		return nil
	})
}

// ListMembers returns a board's membership.
func (s *BoardService) ListMembers(ctx context.Context, boardID string) ([]domain.BoardMember, error) {
	members, err := s.store.Members().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// CreateColumn adds a workflow column; names are unique per board.
func (s *BoardService) CreateColumn(ctx context.Context, actorID, boardID, name string, position int) (*domain.Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	column := &domain.Column{BoardID: boardID, Name: name, Position: position}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		board, err := tx.Boards().GetByID(ctx, boardID)
		if err != nil {
			return boardErr(err, boardID)
		}
		if board.OwnerID != actorID {
			return apperrors.NewForbidden("only the board owner can manage columns")
		}
		exists, err := tx.Columns().ExistsByName(ctx, boardID, name, "")
		if err != nil {
			return apperrors.MapError(err)
		}
		if exists {
			return apperrors.NewConflict("column with this name already exists", map[string]any{"name": name})
		}
		return apperrors.MapError(tx.Columns().Create(ctx, column))
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.EventBoardUpdated, boardID, column.ID)
	return column, nil
}

// UpdateColumn renames or reorders a column.
func (s *BoardService) UpdateColumn(ctx context.Context, actorID, columnID, name string, position int) (*domain.Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	var column *domain.Column
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		column, err = tx.Columns().GetByID(ctx, columnID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("column", map[string]any{"column_id": columnID})
			}
			return apperrors.MapError(err)
		}
		board, err := tx.Boards().GetByID(ctx, column.BoardID)
		if err != nil {
			return boardErr(err, column.BoardID)
		}
		if board.OwnerID != actorID {
			return apperrors.NewForbidden("only the board owner can manage columns")
		}
		exists, err := tx.Columns().ExistsByName(ctx, column.BoardID, name, columnID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if exists {
			return apperrors.NewConflict("column with this name already exists", map[string]any{"name": name})
		}
		column.Name = name
		column.Position = position
		return apperrors.MapError(tx.Columns().Update(ctx, column))
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.EventBoardUpdated, column.BoardID, column.ID)
	return column, nil
}

// DeleteColumn removes a column.
func (s *BoardService) DeleteColumn(ctx context.Context, actorID, columnID string) error {
	var boardID string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		column, err := tx.Columns().GetByID(ctx, columnID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("column", map[string]any{"column_id": columnID})
			}
			return apperrors.MapError(err)
		}
		board, err := tx.Boards().GetByID(ctx, column.BoardID)
		if err != nil {
			return boardErr(err, column.BoardID)
		}
		if board.OwnerID != actorID {
			return apperrors.NewForbidden("only the board owner can manage columns")
		}
		boardID = column.BoardID
		return apperrors.MapError(tx.Columns().Delete(ctx, columnID))
	})
	if err != nil {
		return err
	}

	s.notify(ctx, events.EventBoardUpdated, boardID, columnID)
	return nil
}

func (s *BoardService) notify(ctx context.Context, eventType events.EventType, boardID, entityID string) {
	if s.dispatcher == nil || boardID == "" {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BoardID:   boardID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("board notification failed", zap.String("board_id", boardID), zap.Error(err))
	}
}
