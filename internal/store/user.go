package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// LeaderboardEntry is a ranked view over one user's completion counters.
type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	CompletionRate float64   `json:"completion_rate"`
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// AdjustTaskCounts applies the given deltas to the user's total and
	// completed task counters as a single atomic SQL update. Concurrent
	// callers must not lose increments.
	// Returns ErrUserNotFound if the user does not exist.
	AdjustTaskCounts(ctx context.Context, id uuid.UUID, totalDelta, completedDelta int) error

	// Leaderboard returns all users ranked by completion rate descending,
	// ties broken by completed task count descending. Users with no
	// created tasks rank with a rate of zero.
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
