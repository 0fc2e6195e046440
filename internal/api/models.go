package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Name and Role describe the user the token was issued for
	Name string      `json:"name"`
	Role domain.Role `json:"role"`

	// Token is the JWT bearer token used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateTaskRequest defines the payload for task creation. It doubles as
// the target for the form fields of a multipart request.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"      validate:"omitempty,oneof='To Do' 'In Progress' 'Completed'"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=Low Medium High"`
	DueDate     time.Time  `json:"due_date"    validate:"required"`
	AssignedTo  *uuid.UUID `json:"assigned_to" validate:"omitempty"`
}

// UpdateTaskRequest defines a partial task update. Absent fields are
// left untouched; assigned_to distinguishes absent from explicit null.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Status      *string    `json:"status"      validate:"omitempty,oneof='To Do' 'In Progress' 'Completed'"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=Low Medium High"`
	DueDate     *time.Time `json:"due_date"    validate:"omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`

	// AssignedToSet records whether assigned_to appeared in the payload.
	// Populated during decoding, never by the client directly.
	AssignedToSet bool `json:"-"`
}

// TaskListResponse is one page of tasks plus pagination metadata.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

// LeaderboardResponse ranks all users by completion rate.
type LeaderboardResponse struct {
	Leaderboard []store.LeaderboardEntry `json:"leaderboard"`
}

// NotificationListResponse carries a user's notifications newest-first.
type NotificationListResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
}
