package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// ErrInvalidPagination is returned when a list request carries a page or
// limit below 1.
var ErrInvalidPagination = errors.New("page and limit must be at least 1")

// Sortable task columns accepted by TaskListParams.SortBy. Anything else
// falls back to SortByCreatedAt.
const (
	SortByCreatedAt = "createdAt"
	SortByDueDate   = "dueDate"
	SortByPriority  = "priority"
	SortByStatus    = "status"
	SortByTitle     = "title"
)

// Sort directions accepted by TaskListParams.SortOrder.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// TaskListParams captures the filter, sort and pagination inputs of a
// task list request together with the caller's identity. Row-scoping for
// non-admin callers is applied by the store, never by the handler.
type TaskListParams struct {
	// CallerID and CallerRole drive row-scoping: non-admins only ever see
	// tasks they created or are assigned to, regardless of other filters.
	CallerID   uuid.UUID
	CallerRole domain.Role

	// AssignedOnly restricts the result to tasks assigned to the caller
	// (the /tasks/assigned view). Row-scoping still applies.
	AssignedOnly bool

	Status   domain.TaskStatus
	Priority domain.TaskPriority
	DueFrom  *time.Time
	DueTo    *time.Time
	Search   string

	SortBy    string
	SortOrder string // "asc" or "desc"; anything else means desc

	Page  int
	Limit int
}

// Validate rejects out-of-range pagination values.
func (p *TaskListParams) Validate() error {
	if p.Page < 1 || p.Limit < 1 {
		return ErrInvalidPagination
	}
	return nil
}

// Pages returns the page count for the given total: ceil(total/limit).
func (p *TaskListParams) Pages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// TaskPage is one page of a task listing plus pagination metadata.
type TaskPage struct {
	Tasks []*domain.Task
	Total int
	Page  int
	Pages int
}

// AssigneeCounts holds per-assignee task tallies used by the stats view.
type AssigneeCounts struct {
	Total     int
	Completed int
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store after domain validation.
	// Returns ErrInvalidEntity if the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task and locks its row for the duration
	// of the surrounding transaction. Only meaningful on a store obtained
	// through WithTx; it serializes concurrent mutations of the same task.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the full current state of the task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of tasks matching params, with row-scoping,
	// filters, sorting and pagination applied in the query.
	// Returns ErrInvalidPagination for out-of-range page or limit.
	List(ctx context.Context, params TaskListParams) (*TaskPage, error)

	// CountByAssignee tallies tasks assigned to the given user, total and
	// completed, for the stats view.
	CountByAssignee(ctx context.Context, userID uuid.UUID) (AssigneeCounts, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
