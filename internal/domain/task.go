package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskPriority represents how urgent a task is. The set is ordered:
// Low < Medium < High.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyTaskCreator   = errors.New("task creator cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrImmutableCreator   = errors.New("task creator cannot be changed")
	ErrZeroTaskDueDate    = errors.New("task due date cannot be zero")
	ErrTitleTooLong       = errors.New("task title must be at most 200 characters")
	ErrDescriptionTooLong = errors.New("task description must be at most 2000 characters")
)

// Task represents a unit of work created by a user and optionally
// assigned to another user. CreatorID is immutable after creation.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     time.Time    `json:"due_date"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task owned by creatorID. An empty status defaults
// to "To Do" and an empty priority defaults to "Medium". Returns an error
// if validation fails.
func NewTask(
	creatorID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate time.Time,
	assignedTo *uuid.UUID,
) (*Task, error) {
	if status == "" {
		status = TaskStatusToDo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatorID:   creatorID,
		AssignedTo:  assignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.CreatorID == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}

	if len(t.Description) > 2000 {
		return ErrDescriptionTooLong
	}

	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	if t.DueDate.IsZero() {
		return ErrZeroTaskDueDate
	}

	return nil
}

// CanBeModifiedBy reports whether the caller may update or delete this
// task: admins always, everyone else only when they created it.
// The same rule applies to update and delete.
func (t *Task) CanBeModifiedBy(callerID uuid.UUID, callerRole Role) bool {
	return callerRole == RoleAdmin || t.CreatorID == callerID
}

// IsAssignedTo reports whether the task is currently assigned to userID.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// CompletionDelta returns the adjustment to the creator's completed-task
// counter implied by a transition from the task's current status to next:
// +1 entering Completed, -1 leaving it, 0 otherwise.
func (t *Task) CompletionDelta(next TaskStatus) int {
	switch {
	case next == TaskStatusCompleted && t.Status != TaskStatusCompleted:
		return 1
	case next != TaskStatusCompleted && t.Status == TaskStatusCompleted:
		return -1
	default:
		return 0
	}
}

// Valid reports whether the status is one of the closed set of states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
