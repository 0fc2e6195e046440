package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, title, description, status, priority, due_date,
	creator_id, assigned_to, image_url, created_at, updated_at`

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the creator or assignee does not
// exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatorID,
		assignedToValue(task.AssignedTo),
		nullString(task.ImageURL),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("creator_id", task.CreatorID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", task.CreatorID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return s.scanTask(s.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
// The FOR UPDATE lock is only meaningful when this store wraps a
// transaction; concurrent mutations of the same task then serialize on
// the row lock.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	return s.scanTask(s.db.QueryRowContext(ctx, query, id))
}

// Update implements store.TaskStore.Update
// It persists the full current state of the task (the service applies
// the partial patch before calling). The creator column is deliberately
// not in the SET list: it is immutable.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
			due_date = $5, assigned_to = $6, image_url = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		assignedToValue(task.AssignedTo),
		nullString(task.ImageURL),
		time.Now().UTC(),
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
// The filter, sort and pagination are compiled into a single SQL query;
// a companion COUNT query with the same WHERE clause produces the total.
func (s *PostgresTaskStore) List(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	where, args := buildTaskFilter(params)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM tasks%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns,
		where,
		orderClause(params.SortBy, params.SortOrder),
		len(args)+1,
		len(args)+2,
	)
	args = append(args, params.Limit, (params.Page-1)*params.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close task rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0, params.Limit)
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  params.Page,
		Pages: params.Pages(total),
	}, nil
}

// CountByAssignee implements store.TaskStore.CountByAssignee
func (s *PostgresTaskStore) CountByAssignee(ctx context.Context, userID uuid.UUID) (store.AssigneeCounts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2)
		FROM tasks
		WHERE assigned_to = $1
	`
	var counts store.AssigneeCounts
	err := s.db.QueryRowContext(ctx, query, userID, domain.TaskStatusCompleted).
		Scan(&counts.Total, &counts.Completed)
	if err != nil {
		log.Error("failed to count assigned tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return store.AssigneeCounts{}, MapError(err)
	}

	return counts, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// buildTaskFilter compiles the list params into a WHERE clause and its
// arguments. Row-scoping comes first: non-admin callers only ever see
// rows they created or are assigned to, no matter what else they filter
// on.
func buildTaskFilter(params store.TaskListParams) (string, []any) {
	conds := make([]string, 0, 6)
	args := make([]any, 0, 8)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.AssignedOnly {
		conds = append(conds, fmt.Sprintf("assigned_to = %s", arg(params.CallerID)))
	} else if params.CallerRole != domain.RoleAdmin {
		p := arg(params.CallerID)
		conds = append(conds, fmt.Sprintf("(creator_id = %s OR assigned_to = %s)", p, p))
	}

	if params.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(params.Status)))
	}

	if params.Priority != "" {
		conds = append(conds, fmt.Sprintf("priority = %s", arg(params.Priority)))
	}

	if params.DueFrom != nil {
		conds = append(conds, fmt.Sprintf("due_date >= %s", arg(*params.DueFrom)))
	}

	if params.DueTo != nil {
		conds = append(conds, fmt.Sprintf("due_date <= %s", arg(*params.DueTo)))
	}

	if params.Search != "" {
		p := arg("%" + escapeLike(params.Search) + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// sortColumns whitelists the task columns a caller may sort by. Keys are
// the API-facing camelCase names.
var sortColumns = map[string]string{
	store.SortByCreatedAt: "created_at",
	store.SortByDueDate:   "due_date",
	store.SortByPriority:  "priority",
	store.SortByStatus:    "status",
	store.SortByTitle:     "title",
}

// orderClause maps the requested sort onto a safe ORDER BY clause.
// Unknown columns fall back to created_at; anything but an explicit
// "asc" sorts descending (newest-created-first by default).
func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, store.SortOrderAsc) {
		direction = "ASC"
	}

	return column + " " + direction
}

// escapeLike escapes the LIKE metacharacters in a search term so user
// input always matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (s *PostgresTaskStore) scanTask(row *sql.Row) (*domain.Task, error) {
	var task domain.Task
	var assignedTo uuid.NullUUID
	var imageURL sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatorID,
		&assignedTo,
		&imageURL,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.UUID
	}
	task.ImageURL = imageURL.String

	return &task, nil
}

func scanTaskRow(rows *sql.Rows) (*domain.Task, error) {
	var task domain.Task
	var assignedTo uuid.NullUUID
	var imageURL sql.NullString

	err := rows.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatorID,
		&assignedTo,
		&imageURL,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.UUID
	}
	task.ImageURL = imageURL.String

	return &task, nil
}

func assignedToValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
