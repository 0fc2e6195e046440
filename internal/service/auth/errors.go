package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrTokenUserNotFound indicates the user the token was issued for no
	// longer exists
	ErrTokenUserNotFound = errors.New("user belonging to this token no longer exists")

	// ErrStalePasswordToken indicates the token was issued before the
	// user's most recent password change
	ErrStalePasswordToken = errors.New("token issued before last password change")
)
