package domain

import "errors"

var (
	// ErrValidation wraps every missing or malformed input error.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateCredential is what callers see on a registration conflict.
	// The message does not say which field collided.
	ErrDuplicateCredential = errors.New("username or email is already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrHashing = errors.New("password hashing failed")

	// ErrDuplicateKey is raised by storage when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrProductNotFound = errors.New("product not found")
	ErrForbidden       = errors.New("access forbidden")
)
