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

// TicketService orchestrates ticket mutations: it applies changes,
// derives the audit trail from the field-level diff, triggers auto-watch
// side effects and notifies live viewers — all within one transaction
// per call. Notifications go out only after the transaction committed.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Priority    domain.TicketPriority
	AssigneeID  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket persists a new ticket together with its TICKET_CREATED
// record and the creator's auto-watch, atomically.
func (s *TicketService) CreateTicket(ctx context.Context, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		BoardID:     input.BoardID,
		ColumnID:    input.ColumnID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		CreatedByID: &actorID,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := s.validateColumn(ctx, tx, input.BoardID, input.ColumnID); err != nil {
			return err
		}
		if input.AssigneeID != nil {
			if err := s.validateUser(ctx, tx, *input.AssigneeID); err != nil {
				return err
			}
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: ticket.ID,
			ActorID:  actorID,
			Action:   domain.ActionTicketCreated,
			NewValue: strPtr(ticket.Title),
		}); err != nil {
			return apperrors.MapError(err)
		}
		return s.autoWatch(ctx, tx, ticket.ID, actorID, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyBoard(ctx, events.EventBoardUpdated, ticket.BoardID, ticket.ID)
	return ticket, nil
}

// UpdateTicket applies a partial update. Each diffed field yields one
// history record; a newly set assignee is auto-subscribed as a watcher.
// A no-op update stages nothing and emits no notification.
func (s *TicketService) UpdateTicket(ctx context.Context, actorID, ticketID string, patch TicketPatch) (*domain.Ticket, error) {
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
	}

	var ticket *domain.Ticket
	changed := false

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return ticketErr(err, ticketID)
		}
		// Validation runs before any history is staged: a record
		// referencing a nonexistent column or user would corrupt the
		// audit trail.
		if patch.ColumnID != nil {
			if err := s.validateColumn(ctx, tx, ticket.BoardID, *patch.ColumnID); err != nil {
				return err
			}
		}
		if patch.SetAssignee && patch.AssigneeID != nil {
			if err := s.validateUser(ctx, tx, *patch.AssigneeID); err != nil {
				return err
			}
		}

		changes := ComputeChanges(ticket, patch)
		if len(changes) == 0 {
			return nil
		}

		for _, change := range changes {
			if !applyChange(ticket, patch, change) {
				return apperrors.NewInternalError(nil)
			}
			if err := tx.History().Append(ctx, &domain.HistoryRecord{
				TicketID:  ticket.ID,
				ActorID:   actorID,
				Action:    change.Action,
				FieldName: strPtr(change.Field),
				OldValue:  change.Old,
				NewValue:  change.New,
			}); err != nil {
				return apperrors.MapError(err)
			}
			if change.Field == FieldAssignee && patch.AssigneeID != nil {
				if err := s.autoWatch(ctx, tx, ticket.ID, *patch.AssigneeID, actorID); err != nil {
					return err
				}
			}
		}

		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifyBoard(ctx, events.EventBoardUpdated, ticket.BoardID, ticket.ID)
	}
	return ticket, nil
}

// DeleteTicket records TICKET_DELETED before issuing the physical
// delete: the history row would otherwise be destroyed by cascade
// before it could be written. The record is mirrored to the
// non-cascading archive so the deletion stays durable.
func (s *TicketService) DeleteTicket(ctx context.Context, actorID, ticketID string) error {
	var boardID string

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return ticketErr(err, ticketID)
		}
		boardID = ticket.BoardID

		record := &domain.HistoryRecord{
			TicketID: ticket.ID,
			ActorID:  actorID,
			Action:   domain.ActionTicketDeleted,
			OldValue: strPtr(ticket.Title),
		}
		if err := tx.History().Append(ctx, record); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Archive().Append(ctx, record); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Tickets().Delete(ctx, ticket.ID); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyBoard(ctx, events.EventBoardUpdated, boardID, ticketID)
	return nil
}

// GetTicket fetches a ticket by ID.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, ticketErr(err, ticketID)
	}
	return ticket, nil
}

// ListBoardTickets returns tickets for a board.
func (s *TicketService) ListBoardTickets(ctx context.Context, boardID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets().ListByBoard(ctx, boardID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns the ticket's audit trail as an ascending timeline.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error) {
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, ticketErr(err, ticketID)
	}
	records, err := s.store.History().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// AddComment appends a comment, records COMMENT_ADDED and auto-watches
// the commenter.
func (s *TicketService) AddComment(ctx context.Context, actorID, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	var boardID string
	comment := &domain.Comment{
		TicketID: ticketID,
		AuthorID: actorID,
		Content:  content,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return ticketErr(err, ticketID)
		}
		boardID = ticket.BoardID

		if err := tx.Comments().Create(ctx, comment); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: ticketID,
			ActorID:  actorID,
			Action:   domain.ActionCommentAdded,
			NewValue: strPtr(content),
		}); err != nil {
			return apperrors.MapError(err)
		}
		return s.autoWatch(ctx, tx, ticketID, actorID, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyBoard(ctx, events.EventBoardUpdated, boardID, ticketID)
	return comment, nil
}

// EditComment updates a comment's content and records COMMENT_EDITED
// with the old and new text. Only the author may edit.
func (s *TicketService) EditComment(ctx context.Context, actorID, commentID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	var boardID, ticketID string
	var comment *domain.Comment

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		comment, err = tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
			}
			return apperrors.MapError(err)
		}
		if comment.AuthorID != actorID {
			return apperrors.NewForbidden("only the author can edit this comment")
		}
		ticket, err := tx.Tickets().GetByID(ctx, comment.TicketID)
		if err != nil {
			return ticketErr(err, comment.TicketID)
		}
		boardID = ticket.BoardID
		ticketID = ticket.ID

		oldContent := comment.Content
		now := time.Now()
		comment.Content = content
		comment.IsEdited = true
		comment.UpdatedAt = &now
		if err := tx.Comments().Update(ctx, comment); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: comment.TicketID,
			ActorID:  actorID,
			Action:   domain.ActionCommentEdited,
			OldValue: strPtr(oldContent),
			NewValue: strPtr(content),
		}); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBoard(ctx, events.EventBoardUpdated, boardID, ticketID)
	return comment, nil
}

// DeleteComment records COMMENT_DELETED with the removed content, then
// deletes the comment. Only the author may delete.
func (s *TicketService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	var boardID, ticketID string

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		comment, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
			}
			return apperrors.MapError(err)
		}
		if comment.AuthorID != actorID {
			return apperrors.NewForbidden("only the author can delete this comment")
		}
		ticket, err := tx.Tickets().GetByID(ctx, comment.TicketID)
		if err != nil {
			return ticketErr(err, comment.TicketID)
		}
		boardID = ticket.BoardID
		ticketID = ticket.ID

		if err := tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: comment.TicketID,
			ActorID:  actorID,
			Action:   domain.ActionCommentDeleted,
			OldValue: strPtr(comment.Content),
		}); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.Comments().Delete(ctx, comment.ID); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyBoard(ctx, events.EventBoardUpdated, boardID, ticketID)
	return nil
}

// ListComments returns a ticket's comments oldest first.
func (s *TicketService) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, ticketErr(err, ticketID)
	}
	comments, err := s.store.Comments().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// autoWatch subscribes userID to the ticket if not already watching.
// A duplicate is a silent no-op; a fresh subscription additionally
// records WATCHER_ADDED attributed to the acting user.
func (s *TicketService) autoWatch(ctx context.Context, tx repository.Store, ticketID, userID, addedBy string) error {
	watcher, err := tx.Watchers().Add(ctx, &domain.Watcher{
		TicketID:  ticketID,
		UserID:    userID,
		AddedByID: addedBy,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	if watcher == nil {
		return nil
	}
	if err := tx.History().Append(ctx, &domain.HistoryRecord{
		TicketID: ticketID,
		ActorID:  addedBy,
		Action:   domain.ActionWatcherAdded,
		NewValue: strPtr(userID),
	}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) validateColumn(ctx context.Context, tx repository.Store, boardID, columnID string) error {
	column, err := tx.Columns().GetByID(ctx, columnID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewValidationError("column does not exist", map[string]any{"column_id": columnID})
		}
		return apperrors.MapError(err)
	}
	if column.BoardID != boardID {
		return apperrors.NewValidationError("column belongs to another board", map[string]any{"column_id": columnID})
	}
	return nil
}

func (s *TicketService) validateUser(ctx context.Context, tx repository.Store, userID string) error {
	if _, err := tx.Users().GetByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return apperrors.NewValidationError("user does not exist", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// notifyBoard emits a post-commit event for the board's live viewers.
// Fire-and-forget: delivery failure never fails the mutation.
func (s *TicketService) notifyBoard(ctx context.Context, eventType events.EventType, boardID, entityID string) {
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
