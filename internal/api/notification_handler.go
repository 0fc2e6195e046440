package api

import (
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// NotificationHandler serves the authenticated user's notification log.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /tasks/notifications, newest-first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := getCaller(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListFor(r.Context(), callerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NotificationListResponse{Notifications: notifications})
}

// MarkRead handles PATCH /tasks/notifications/{id}/read. A notification
// belonging to another user reads as not found.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := getCaller(w, r)
	if !ok {
		return
	}

	notificationID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, callerID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
