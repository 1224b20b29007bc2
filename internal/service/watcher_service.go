package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/repository"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

// WatcherService handles explicit watcher subscription. Unlike
// auto-watch, an explicit add of an existing watcher surfaces Conflict
// to the caller.
type WatcherService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewWatcherService constructs the service.
func NewWatcherService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *WatcherService {
	return &WatcherService{store: store, dispatcher: dispatcher, logger: logger}
}

// AddWatcher subscribes userID to the ticket on behalf of actorID and
// records WATCHER_ADDED. Returns Conflict when already watching.
func (s *WatcherService) AddWatcher(ctx context.Context, actorID, ticketID, userID string) (*domain.Watcher, error) {
	var boardID string
	var watcher *domain.Watcher

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return ticketErr(err, ticketID)
		}
		boardID = ticket.BoardID

		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return apperrors.MapError(err)
		}

		watcher, err = tx.Watchers().Add(ctx, &domain.Watcher{
			TicketID:  ticketID,
			UserID:    userID,
			AddedByID: actorID,
		})
		if err != nil {
			return apperrors.MapError(err)
		}
		if watcher == nil {
			return apperrors.NewConflict("user is already watching this ticket", map[string]any{
				"ticket_id": ticketID,
				"user_id":   userID,
			})
		}
		return tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: ticketID,
			ActorID:  actorID,
			Action:   domain.ActionWatcherAdded,
			NewValue: strPtr(userID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, boardID, ticketID)
	return watcher, nil
}

// RemoveWatcher unsubscribes userID and records WATCHER_REMOVED.
func (s *WatcherService) RemoveWatcher(ctx context.Context, actorID, ticketID, userID string) error {
	var boardID string

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return ticketErr(err, ticketID)
		}
		boardID = ticket.BoardID

		removed, err := tx.Watchers().Remove(ctx, ticketID, userID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !removed {
			return apperrors.NewNotFound("watcher", map[string]any{
				"ticket_id": ticketID,
				"user_id":   userID,
			})
		}
		return tx.History().Append(ctx, &domain.HistoryRecord{
			TicketID: ticketID,
			ActorID:  actorID,
			Action:   domain.ActionWatcherRemoved,
			OldValue: strPtr(userID),
		})
	})
	if err != nil {
		return err
	}

	s.notify(ctx, boardID, ticketID)
	return nil
}

// ListWatchers returns all watchers of a ticket.
func (s *WatcherService) ListWatchers(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, ticketErr(err, ticketID)
	}
	watchers, err := s.store.Watchers().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return watchers, nil
}

// IsWatching reports whether the user watches the ticket.
func (s *WatcherService) IsWatching(ctx context.Context, ticketID, userID string) (bool, error) {
	watching, err := s.store.Watchers().IsWatching(ctx, ticketID, userID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return watching, nil
}

func (s *WatcherService) notify(ctx context.Context, boardID, entityID string) {
	if s.dispatcher == nil || boardID == "" {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventBoardUpdated,
		BoardID:   boardID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("board notification failed", zap.String("board_id", boardID), zap.Error(err))
	}
}
