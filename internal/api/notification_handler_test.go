package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestNotificationHandler_List(t *testing.T) {
	t.Parallel()

	callerID := uuid.New()

	svc := &mockNotificationSvc{
		listFn: func(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
			assert.Equal(t, callerID, userID)
			return []*domain.Notification{
				{ID: uuid.New(), UserID: userID, Type: domain.NotificationTaskAssigned, TaskTitle: "Deploy"},
			}, nil
		},
	}
	handler := NewNotificationHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/notifications", nil)
	w := httptest.NewRecorder()
	handler.List(w, asCaller(req, callerID, domain.RoleUser))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp NotificationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "Deploy", resp.Notifications[0].TaskTitle)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	t.Parallel()

	callerID := uuid.New()
	notificationID := uuid.New()

	t.Run("marks own notification", func(t *testing.T) {
		t.Parallel()

		var gotID, gotUser uuid.UUID
		svc := &mockNotificationSvc{
			markReadFn: func(ctx context.Context, id, userID uuid.UUID) error {
				gotID, gotUser = id, userID
				return nil
			},
		}
		handler := NewNotificationHandler(svc)

		req := newTaskRequestWithID(http.MethodPatch, "/api/tasks/notifications/"+notificationID.String()+"/read", notificationID.String(), nil)
		w := httptest.NewRecorder()
		handler.MarkRead(w, asCaller(req, callerID, domain.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, notificationID, gotID)
		assert.Equal(t, callerID, gotUser)
	})

	t.Run("foreign notification reads as not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockNotificationSvc{
			markReadFn: func(ctx context.Context, id, userID uuid.UUID) error {
				return store.ErrNotificationNotFound
			},
		}
		handler := NewNotificationHandler(svc)

		req := newTaskRequestWithID(http.MethodPatch, "/api/tasks/notifications/"+notificationID.String()+"/read", notificationID.String(), nil)
		w := httptest.NewRecorder()
		handler.MarkRead(w, asCaller(req, callerID, domain.RoleUser))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaderboardHandler_Get(t *testing.T) {
	t.Parallel()

	callerID := uuid.New()
	svc := &mockLeaderboardService{
		entries: []store.LeaderboardEntry{
			{UserID: uuid.New(), Name: "Ada", TotalTasks: 2, CompletedTasks: 2, CompletionRate: 100},
			{UserID: uuid.New(), Name: "Grace", TotalTasks: 2, CompletedTasks: 1, CompletionRate: 50},
		},
	}
	handler := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/leaderboard", nil)
	w := httptest.NewRecorder()
	handler.Get(w, asCaller(req, callerID, domain.RoleUser))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Leaderboard, 2)
	assert.Equal(t, "Ada", resp.Leaderboard[0].Name)
}
