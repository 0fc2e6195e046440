package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Hand-written function-field mocks for the service interfaces, plus
// helpers for building authenticated test requests.

type mockUserService struct {
	registerFn func(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	verifyFn   func(ctx context.Context, email, password string) (*domain.User, error)
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password, role)
	}
	return domain.NewUser(name, email, password, role)
}

func (m *mockUserService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, email, password)
	}
	return nil, service.ErrInvalidCredentials
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

type mockTaskService struct {
	createFn func(ctx context.Context, callerID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error)
	updateFn func(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role, params service.UpdateTaskParams) (*domain.Task, error)
	deleteFn func(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role) error
	listFn   func(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error)
	statsFn  func(ctx context.Context, userID uuid.UUID) (*service.UserStats, error)
}

func (m *mockTaskService) CreateTask(ctx context.Context, callerID uuid.UUID, params service.CreateTaskParams) (*domain.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, callerID, params)
	}
	return domain.NewTask(callerID, params.Title, params.Description, params.Status, params.Priority, params.DueDate, params.AssignedTo)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role, params service.UpdateTaskParams) (*domain.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, taskID, callerID, callerRole, params)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskService) DeleteTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, taskID, callerID, callerRole)
	}
	return nil
}

func (m *mockTaskService) ListTasks(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return &store.TaskPage{Page: params.Page}, nil
}

func (m *mockTaskService) GetStats(ctx context.Context, userID uuid.UUID) (*service.UserStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, userID)
	}
	return &service.UserStats{}, nil
}

type mockNotificationSvc struct {
	listFn     func(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	markReadFn func(ctx context.Context, notificationID, userID uuid.UUID) error
}

func (m *mockNotificationSvc) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	return nil
}

func (m *mockNotificationSvc) ListFor(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotificationSvc) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, notificationID, userID)
	}
	return nil
}

type mockLeaderboardService struct {
	entries []store.LeaderboardEntry
	err     error
}

func (m *mockLeaderboardService) Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error) {
	return m.entries, m.err
}

// asCaller returns a copy of the request with the caller's identity in
// the context, the way the auth middleware would leave it.
func asCaller(r *http.Request, userID uuid.UUID, role domain.Role) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	ctx = context.WithValue(ctx, shared.UserRoleContextKey, role)
	return r.WithContext(ctx)
}
