package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/events"
)

// NotificationService bridges committed board events to the live
// fan-out sink (Redis pub/sub). Delivery is best-effort: a failed
// publish is logged and dropped, never retried here.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  *events.RedisPublisher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher *events.RedisPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to board events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBoardUpdated, n.handleBoardEvent)
	n.dispatcher.Subscribe(events.EventBoardDeleted, n.handleBoardEvent)
}

func (n *NotificationService) handleBoardEvent(ctx context.Context, event events.Event) error {
	n.logger.Debug("board event",
		zap.String("type", string(event.Type)),
		zap.String("board_id", event.BoardID),
		zap.String("entity_id", event.EntityID))
	if n.publisher == nil {
		return nil
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("publish board event failed",
			zap.String("board_id", event.BoardID),
			zap.Error(err))
	}
	return nil
}
