package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the task event a notification records.
type NotificationType string

// Possible notification types
const (
	NotificationTaskAssigned  NotificationType = "TASK_ASSIGNED"
	NotificationTaskCompleted NotificationType = "TASK_COMPLETED"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID     = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationTask   = errors.New("notification task ID cannot be empty")
	ErrEmptyNotificationUser   = errors.New("notification user ID cannot be empty")
	ErrInvalidNotificationType = errors.New("invalid notification type")
)

// Notification is an append-only record of a task event surfaced to a
// user. Only the Read flag is ever mutated after creation.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	TaskID    uuid.UUID        `json:"task_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`

	// TaskTitle is populated on reads by joining against the task table.
	// It is not stored on the notification row itself.
	TaskTitle string `json:"task_title,omitempty"`
}

// NewNotification creates a new unread Notification for the given task,
// recipient and event type. Returns an error if validation fails.
func NewNotification(taskID, userID uuid.UUID, typ NotificationType) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.TaskID == uuid.Nil {
		return ErrEmptyNotificationTask
	}

	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUser
	}

	if !n.Type.Valid() {
		return ErrInvalidNotificationType
	}

	return nil
}

// Valid reports whether the type is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskAssigned, NotificationTaskCompleted:
		return true
	default:
		return false
	}
}
