package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid token", err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "token for deleted user", err: auth.ErrTokenUserNotFound, want: http.StatusUnauthorized},
		{name: "token older than password change", err: auth.ErrStalePasswordToken, want: http.StatusUnauthorized},
		{name: "bad credentials", err: service.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "missing caller identity", err: domain.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "foreign task", err: service.ErrNotOwned, want: http.StatusForbidden},
		{name: "missing task", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "missing user", err: store.ErrUserNotFound, want: http.StatusNotFound},
		{name: "missing notification", err: store.ErrNotificationNotFound, want: http.StatusNotFound},
		{name: "duplicate email", err: store.ErrEmailExists, want: http.StatusConflict},
		{name: "bad pagination", err: store.ErrInvalidPagination, want: http.StatusBadRequest},
		{name: "entity rejected by database", err: store.ErrInvalidEntity, want: http.StatusBadRequest},
		{name: "empty task title", err: domain.ErrEmptyTaskTitle, want: http.StatusBadRequest},
		{name: "unknown status value", err: domain.ErrInvalidTaskStatus, want: http.StatusBadRequest},
		{name: "image store down", err: service.ErrImageStoreUnavailable, want: http.StatusInternalServerError},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCode_WrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading task: %w", store.ErrTaskNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))

	serviceErr := service.NewTaskServiceError("update_task", "failed", service.ErrImageStoreUnavailable)
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatusCode(serviceErr))

	validationErr := domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(validationErr))
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("internal details never leak", func(t *testing.T) {
		t.Parallel()

		leaky := errors.New(`pq: connection to "db-internal-host:5432" refused`)
		msg := GetSafeErrorMessage(leaky)

		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "db-internal-host")
	})

	t.Run("validation messages are surfaced", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, domain.ErrEmptyTaskTitle.Error(), GetSafeErrorMessage(domain.ErrEmptyTaskTitle))
	})

	t.Run("nil error has a fallback", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New("Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	plain := errors.New("something else entirely")
	assert.Equal(t, "Validation error", SanitizeValidationError(plain))
}
