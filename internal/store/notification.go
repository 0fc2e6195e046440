package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// NotificationStore defines the interface for the append-only
// notification log.
type NotificationStore interface {
	// Create appends a new notification.
	// Returns ErrInvalidEntity if the task or user does not exist.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser returns the user's notifications newest-first, each
	// enriched with the referenced task's title.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead flips the read flag on a notification owned by userID.
	// Returns ErrNotificationNotFound if no such notification belongs
	// to the user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a new NotificationStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
