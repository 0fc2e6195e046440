package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func newAuthHandler(t *testing.T, users *mockUserService) *AuthHandler {
	t.Helper()
	jwtService := auth.RequireTestJWTService(t)
	return NewAuthHandler(users, jwtService, 30*24*time.Hour)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("valid registration returns a token", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(t, &mockUserService{})
		w := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "password123",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Ada", resp.Name)
		assert.Equal(t, domain.RoleUser, resp.Role)
	})

	t.Run("admin role is accepted", func(t *testing.T) {
		t.Parallel()

		var gotRole domain.Role
		users := &mockUserService{
			registerFn: func(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
				gotRole = role
				return domain.NewUser(name, email, password, role)
			},
		}
		handler := newAuthHandler(t, users)
		w := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "password123",
			Role:     "admin",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, domain.RoleAdmin, gotRole)
	})

	t.Run("unknown role is rejected before the service", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			registerFn: func(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
				t.Fatal("service should not be reached")
				return nil, nil
			},
		}
		handler := newAuthHandler(t, users)
		w := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "password123",
			Role:     "superuser",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(t, &mockUserService{})
		w := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			registerFn: func(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
				return nil, store.ErrEmailExists
			},
		}
		handler := newAuthHandler(t, users)
		w := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "taken@example.com",
			Password: "password123",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(t, &mockUserService{})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("unknown email and wrong password share a response", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(t, &mockUserService{
			verifyFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				return nil, service.ErrInvalidCredentials
			},
		})

		unknown := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		wrong := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		// Responses must be indistinguishable to avoid account probing.
		assert.Equal(t, stripTraceID(t, unknown), stripTraceID(t, wrong))
	})

	t.Run("valid credentials return a token", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("Ada", "ada@example.com", "password123", domain.RoleUser)
		require.NoError(t, err)

		handler := newAuthHandler(t, &mockUserService{
			verifyFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				return user, nil
			},
		})
		w := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "password123",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, user.ID, resp.UserID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("service failure is a server error, not bad credentials", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(t, &mockUserService{
			verifyFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				return nil, assert.AnError
			},
		})
		w := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "password123",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// stripTraceID normalizes an error response body for comparison.
func stripTraceID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	delete(resp, "trace_id")
	normalized, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(normalized)
}
