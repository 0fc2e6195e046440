package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// NotificationService maintains the append-only notification log. It
// doubles as the event handler that turns task lifecycle events into
// notification rows.
type NotificationService interface {
	events.EventHandler

	// ListFor returns the user's notifications newest-first, enriched
	// with the referenced task's title.
	ListFor(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead flips the read flag on one of the user's notifications.
	// Returns store.ErrNotificationNotFound when the notification does
	// not exist or belongs to someone else.
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
}

// notificationServiceImpl implements the NotificationService interface
type notificationServiceImpl struct {
	notificationStore store.NotificationStore
	logger            *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationStore store.NotificationStore, logger *slog.Logger) NotificationService {
	return &notificationServiceImpl{
		notificationStore: notificationStore,
		logger:            logger.With(slog.String("component", "notification_service")),
	}
}

// HandleEvent implements events.EventHandler
// It appends one notification per event. The emitter treats handler
// errors as best-effort, so a failed write never reaches the mutation
// that produced the event; it is still returned for logging.
func (s *notificationServiceImpl) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	notification, err := domain.NewNotification(event.TaskID, event.UserID, event.Type)
	if err != nil {
		log.Warn("dropping malformed task event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return err
	}

	if err := s.notificationStore.Create(ctx, notification); err != nil {
		log.Warn("failed to record notification",
			slog.String("error", err.Error()),
			slog.String("task_id", event.TaskID.String()),
			slog.String("user_id", event.UserID.String()))
		return err
	}

	log.Debug("notification recorded",
		slog.String("notification_id", notification.ID.String()),
		slog.String("type", string(notification.Type)))
	return nil
}

// ListFor implements NotificationService.ListFor
func (s *notificationServiceImpl) ListFor(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notificationStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead implements NotificationService.MarkRead
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.notificationStore.MarkRead(ctx, notificationID, userID)
}
