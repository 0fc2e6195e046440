package service

import (
	"context"
	"database/sql"
	"io"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Hand-written function-field mocks shared by the service tests. Only
// the methods a test overrides need a function; the rest fall back to
// zero values.

type mockTaskStore struct {
	createFn          func(ctx context.Context, task *domain.Task) error
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listFn            func(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error)
	countByAssigneeFn func(ctx context.Context, userID uuid.UUID) (store.AssigneeCounts, error)

	updated []*domain.Task
	removed []uuid.UUID
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.updated = append(m.updated, task)
	return nil
}

func (m *mockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockTaskStore) List(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return &store.TaskPage{}, nil
}

func (m *mockTaskStore) CountByAssignee(ctx context.Context, userID uuid.UUID) (store.AssigneeCounts, error) {
	if m.countByAssigneeFn != nil {
		return m.countByAssigneeFn(ctx, userID)
	}
	return store.AssigneeCounts{}, nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

type mockUserStore struct {
	createFn      func(ctx context.Context, user *domain.User) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	leaderboardFn func(ctx context.Context) ([]store.LeaderboardEntry, error)

	adjustments []counterAdjustment
}

// counterAdjustment records one AdjustTaskCounts call.
type counterAdjustment struct {
	userID         uuid.UUID
	totalDelta     int
	completedDelta int
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) AdjustTaskCounts(ctx context.Context, id uuid.UUID, totalDelta, completedDelta int) error {
	m.adjustments = append(m.adjustments, counterAdjustment{id, totalDelta, completedDelta})
	return nil
}

func (m *mockUserStore) Leaderboard(ctx context.Context) ([]store.LeaderboardEntry, error) {
	if m.leaderboardFn != nil {
		return m.leaderboardFn(ctx)
	}
	return nil, nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockNotificationStore struct {
	createFn     func(ctx context.Context, n *domain.Notification) error
	listByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	markReadFn   func(ctx context.Context, id, userID uuid.UUID) error
}

func (m *mockNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	return nil
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, id, userID)
	}
	return nil
}

func (m *mockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore { return m }

type mockImageStore struct {
	uploadFn func(ctx context.Context, taskID uuid.UUID, filename, contentType string, data io.Reader) (string, error)
	deleteFn func(ctx context.Context, imageURL string) error
	deleted  []string
}

func (m *mockImageStore) Upload(ctx context.Context, taskID uuid.UUID, filename, contentType string, data io.Reader) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, taskID, filename, contentType, data)
	}
	return "https://img.test/" + taskID.String(), nil
}

func (m *mockImageStore) Delete(ctx context.Context, imageURL string) error {
	m.deleted = append(m.deleted, imageURL)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, imageURL)
	}
	return nil
}

type mockLeaderboardCache struct {
	entries []store.LeaderboardEntry
	hit     bool
	setWith [][]store.LeaderboardEntry
}

func (m *mockLeaderboardCache) Get(ctx context.Context) ([]store.LeaderboardEntry, bool) {
	return m.entries, m.hit
}

func (m *mockLeaderboardCache) Set(ctx context.Context, entries []store.LeaderboardEntry) {
	m.setWith = append(m.setWith, entries)
}

type mockEventEmitter struct {
	emitted []*events.TaskEvent
	err     error
}

func (m *mockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	m.emitted = append(m.emitted, event)
	return m.err
}

type mockPasswordVerifier struct {
	err error
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	return m.err
}
