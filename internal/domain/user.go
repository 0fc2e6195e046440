package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may do. It is a closed set: any value
// outside the constants below fails validation.
type Role string

// Possible user roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Common validation errors for User
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyUserName    = errors.New("user name cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrInvalidRole      = errors.New("invalid role")
	ErrNegativeCounters = errors.New("task counters cannot be negative")
	ErrCounterInvariant = errors.New("completed tasks cannot exceed total tasks")
)

// User represents a registered user of the application.
// TotalTasks and CompletedTasks are running counters maintained by task
// mutations; they are only ever changed through atomic SQL deltas.
type User struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Password          string    `json:"-"` // Plaintext, only set transiently during registration
	HashedPassword    string    `json:"-"` // Never expose the hash in JSON
	Role              Role      `json:"role"`
	TotalTasks        int       `json:"total_tasks"`
	CompletedTasks    int       `json:"completed_tasks"`
	PasswordChangedAt time.Time `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email, password and role.
// An empty role defaults to RoleUser. It generates a new UUID for the user
// and sets the timestamps. Returns an error if validation fails.
//
// NOTE: The plaintext password is kept on the struct only so the store can
// hash it; it is never persisted or serialized.
func NewUser(name, email, password string, role Role) (*User, error) {
	if role == "" {
		role = RoleUser
	}

	now := time.Now().UTC()
	user := &User{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(name),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Password:          password,
		Role:              role,
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyUserName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt's practical input limit
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	if u.TotalTasks < 0 || u.CompletedTasks < 0 {
		return ErrNegativeCounters
	}

	if u.CompletedTasks > u.TotalTasks {
		return ErrCounterInvariant
	}

	return nil
}

// CompletionRate returns the percentage of the user's created tasks that
// are currently completed. Defined as 0 when no tasks have been created.
func (u *User) CompletionRate() float64 {
	if u.TotalTasks == 0 {
		return 0
	}
	return float64(u.CompletedTasks) / float64(u.TotalTasks) * 100
}

// Valid reports whether the role is one of the closed set of known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role.
// Returns ErrInvalidRole if the string is not a known role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// validEmailFormat performs basic validation of email format: a single @
// with a dotted domain part. The API layer additionally validates emails
// with the validator library; this keeps the entity self-consistent.
func validEmailFormat(email string) bool {
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 {
		return false
	}

	dotIndex := strings.IndexByte(domainPart, '.')
	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
