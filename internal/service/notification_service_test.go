package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestNotificationService_HandleEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	taskID := uuid.New()
	recipientID := uuid.New()

	t.Run("assignment event becomes an unread notification", func(t *testing.T) {
		t.Parallel()

		var saved *domain.Notification
		notifications := &mockNotificationStore{
			createFn: func(ctx context.Context, n *domain.Notification) error {
				saved = n
				return nil
			},
		}
		svc := NewNotificationService(notifications, testLogger())

		event := events.NewTaskEvent(domain.NotificationTaskAssigned, taskID, recipientID)
		err := svc.HandleEvent(ctx, event)

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, taskID, saved.TaskID)
		assert.Equal(t, recipientID, saved.UserID)
		assert.Equal(t, domain.NotificationTaskAssigned, saved.Type)
		assert.False(t, saved.Read)
	})

	t.Run("store failure is returned for the emitter to log", func(t *testing.T) {
		t.Parallel()

		notifications := &mockNotificationStore{
			createFn: func(ctx context.Context, n *domain.Notification) error {
				return errors.New("connection reset")
			},
		}
		svc := NewNotificationService(notifications, testLogger())

		event := events.NewTaskEvent(domain.NotificationTaskCompleted, taskID, recipientID)
		err := svc.HandleEvent(ctx, event)

		assert.Error(t, err)
	})
}

func TestNotificationService_ListFor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns enriched notifications", func(t *testing.T) {
		t.Parallel()

		stored := []*domain.Notification{
			{ID: uuid.New(), UserID: userID, Type: domain.NotificationTaskAssigned, TaskTitle: "Deploy"},
			{ID: uuid.New(), UserID: userID, Type: domain.NotificationTaskCompleted, TaskTitle: "Review"},
		}
		notifications := &mockNotificationStore{
			listByUserFn: func(ctx context.Context, id uuid.UUID) ([]*domain.Notification, error) {
				assert.Equal(t, userID, id)
				return stored, nil
			},
		}
		svc := NewNotificationService(notifications, testLogger())

		got, err := svc.ListFor(ctx, userID)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Deploy", got[0].TaskTitle)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()

		notifications := &mockNotificationStore{
			listByUserFn: func(ctx context.Context, id uuid.UUID) ([]*domain.Notification, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := NewNotificationService(notifications, testLogger())

		_, err := svc.ListFor(ctx, userID)

		assert.Error(t, err)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("foreign notification reads as not found", func(t *testing.T) {
		t.Parallel()

		notifications := &mockNotificationStore{
			markReadFn: func(ctx context.Context, id, userID uuid.UUID) error {
				return store.ErrNotificationNotFound
			},
		}
		svc := NewNotificationService(notifications, testLogger())

		err := svc.MarkRead(ctx, uuid.New(), uuid.New())

		assert.ErrorIs(t, err, store.ErrNotificationNotFound)
	})
}
