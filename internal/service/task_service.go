package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// ImageUpload carries one image attachment extracted from a multipart
// request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// CreateTaskParams are the inputs for creating a task. Status and
// Priority may be empty; the domain constructor applies the defaults.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     time.Time
	AssignedTo  *uuid.UUID
	Image       *ImageUpload
}

// UpdateTaskParams describe a partial task update. Nil pointer fields
// are left untouched. AssignedTo is tri-state: it only applies when
// AssignedToSet is true, and a nil value then clears the assignee.
type UpdateTaskParams struct {
	Title         *string
	Description   *string
	Status        *domain.TaskStatus
	Priority      *domain.TaskPriority
	DueDate       *time.Time
	AssignedTo    *uuid.UUID
	AssignedToSet bool
	Image         *ImageUpload
}

// UserStats aggregates one user's task activity for the stats view.
type UserStats struct {
	TotalCreated      int     `json:"totalCreated"`
	CompletedCreated  int     `json:"completedCreated"`
	TotalAssigned     int     `json:"totalAssigned"`
	CompletedAssigned int     `json:"completedAssigned"`
	CompletionRate    float64 `json:"completionRate"`
}

// TaskService provides task lifecycle operations. Mutations keep the
// creator's counters in step inside the same transaction and emit
// assignment/completion events after commit.
type TaskService interface {
	// CreateTask creates a task owned by callerID, uploading the optional
	// image attachment first.
	CreateTask(ctx context.Context, callerID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// UpdateTask applies a partial update to a task. Only the creator or
	// an admin may update; concurrent updates of the same task serialize
	// on a row lock.
	UpdateTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role, params UpdateTaskParams) (*domain.Task, error)

	// DeleteTask removes a task and rolls its contribution out of the
	// creator's counters. Only the creator or an admin may delete.
	DeleteTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role) error

	// ListTasks returns one page of tasks visible to the caller.
	ListTasks(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error)

	// GetStats aggregates created and assigned task counts for a user.
	GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db         *sql.DB
	taskStore  store.TaskStore
	userStore  store.UserStore
	imageStore ImageStore
	emitter    events.EventEmitter
	logger     *slog.Logger

	// runTx wraps the mutation flows in a database transaction. Tests
	// substitute a runner that executes the function directly.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
// imageStore may be nil when attachments are disabled; requests carrying
// an image then fail with ErrImageStoreUnavailable.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	userStore store.UserStore,
	imageStore ImageStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:         db,
		taskStore:  taskStore,
		userStore:  userStore,
		imageStore: imageStore,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "task_service")),
		runTx:      store.RunInTransaction,
	}, nil
}

// CreateTask implements TaskService.CreateTask
// The image is uploaded before the transaction: an upload failure means
// no task row is ever written. If the transaction fails afterwards the
// uploaded image is removed again, best-effort.
func (s *taskServiceImpl) CreateTask(ctx context.Context, callerID uuid.UUID, params CreateTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		callerID,
		params.Title,
		params.Description,
		params.Status,
		params.Priority,
		params.DueDate,
		params.AssignedTo,
	)
	if err != nil {
		return nil, err
	}

	if params.Image != nil {
		url, err := s.uploadImage(ctx, task.ID, params.Image)
		if err != nil {
			return nil, err
		}
		task.ImageURL = url
	}

	completedDelta := 0
	if task.Status == domain.TaskStatusCompleted {
		completedDelta = 1
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			return NewTaskServiceError("create_task", "failed to save task", err)
		}
		if err := s.userStore.WithTx(tx).AdjustTaskCounts(ctx, callerID, 1, completedDelta); err != nil {
			return NewTaskServiceError("create_task", "failed to adjust creator counters", err)
		}
		return nil
	})
	if err != nil {
		if task.ImageURL != "" {
			s.cleanupImage(ctx, task.ImageURL)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("creator_id", callerID.String()))
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", callerID.String()))

	if task.AssignedTo != nil {
		s.emit(ctx, events.NewTaskEvent(domain.NotificationTaskAssigned, task.ID, *task.AssignedTo))
	}
	if completedDelta == 1 {
		s.emit(ctx, events.NewTaskEvent(domain.NotificationTaskCompleted, task.ID, task.CreatorID))
	}

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// The row lock taken by GetByIDForUpdate serializes concurrent updates
// of the same task, so the status read that drives the counter delta
// cannot go stale.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role, params UpdateTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	var pending []*events.TaskEvent

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		if !task.CanBeModifiedBy(callerID, callerRole) {
			return ErrNotOwned
		}

		if params.Image != nil {
			if task.ImageURL != "" {
				s.cleanupImage(ctx, task.ImageURL)
			}
			url, err := s.uploadImage(ctx, task.ID, params.Image)
			if err != nil {
				return err
			}
			task.ImageURL = url
		}

		completedDelta := 0
		if params.Status != nil {
			completedDelta = task.CompletionDelta(*params.Status)
		}

		prevAssignee := task.AssignedTo

		applyPatch(task, params)

		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		if completedDelta != 0 {
			if err := s.userStore.WithTx(tx).AdjustTaskCounts(ctx, task.CreatorID, 0, completedDelta); err != nil {
				return NewTaskServiceError("update_task", "failed to adjust creator counters", err)
			}
		}

		if params.AssignedToSet && task.AssignedTo != nil && !sameAssignee(prevAssignee, task.AssignedTo) {
			pending = append(pending, events.NewTaskEvent(domain.NotificationTaskAssigned, task.ID, *task.AssignedTo))
		}
		if completedDelta == 1 {
			pending = append(pending, events.NewTaskEvent(domain.NotificationTaskCompleted, task.ID, task.CreatorID))
		}

		updated = task
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) && !errors.Is(err, ErrNotOwned) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("caller_id", callerID.String()))

	for _, event := range pending {
		s.emit(ctx, event)
	}

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, callerID uuid.UUID, callerRole domain.Role) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var imageURL string

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		if !task.CanBeModifiedBy(callerID, callerRole) {
			return ErrNotOwned
		}

		if err := txTasks.Delete(ctx, taskID); err != nil {
			return err
		}

		completedDelta := 0
		if task.Status == domain.TaskStatusCompleted {
			completedDelta = -1
		}
		if err := s.userStore.WithTx(tx).AdjustTaskCounts(ctx, task.CreatorID, -1, completedDelta); err != nil {
			return NewTaskServiceError("delete_task", "failed to adjust creator counters", err)
		}

		imageURL = task.ImageURL
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) && !errors.Is(err, ErrNotOwned) {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		return err
	}

	if imageURL != "" {
		s.cleanupImage(ctx, imageURL)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("caller_id", callerID.String()))
	return nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, params store.TaskListParams) (*store.TaskPage, error) {
	return s.taskStore.List(ctx, params)
}

// GetStats implements TaskService.GetStats
// Created counts come from the user's counters; assigned counts are
// tallied from the task table.
func (s *taskServiceImpl) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		log.Error("failed to load user for stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	assigned, err := s.taskStore.CountByAssignee(ctx, userID)
	if err != nil {
		log.Error("failed to count assigned tasks for stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return &UserStats{
		TotalCreated:      user.TotalTasks,
		CompletedCreated:  user.CompletedTasks,
		TotalAssigned:     assigned.Total,
		CompletedAssigned: assigned.Completed,
		CompletionRate:    user.CompletionRate(),
	}, nil
}

func (s *taskServiceImpl) uploadImage(ctx context.Context, taskID uuid.UUID, image *ImageUpload) (string, error) {
	if s.imageStore == nil {
		return "", ErrImageStoreUnavailable
	}

	url, err := s.imageStore.Upload(ctx, taskID, image.Filename, image.ContentType, image.Data)
	if err != nil {
		return "", NewTaskServiceError("upload_image", "failed to store image", ErrImageStoreUnavailable)
	}
	return url, nil
}

// cleanupImage removes an image that is no longer referenced. Failures
// are logged and swallowed; an orphaned object is preferable to a failed
// mutation.
func (s *taskServiceImpl) cleanupImage(ctx context.Context, imageURL string) {
	if s.imageStore == nil {
		return
	}
	if err := s.imageStore.Delete(ctx, imageURL); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to delete image",
			slog.String("error", err.Error()),
			slog.String("image_url", imageURL))
	}
}

// emit publishes one event, best-effort. The mutation already committed,
// so handler errors are logged and dropped.
func (s *taskServiceImpl) emit(ctx context.Context, event *events.TaskEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit task event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.Type)),
			slog.String("task_id", event.TaskID.String()))
	}
}

// applyPatch copies the set fields of params onto task. CreatorID is
// never touched.
func applyPatch(task *domain.Task, params UpdateTaskParams) {
	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = *params.DueDate
	}
	if params.AssignedToSet {
		task.AssignedTo = params.AssignedTo
	}
	task.UpdatedAt = time.Now().UTC()
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
