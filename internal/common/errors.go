// Package common defines shared constants and sentinel errors used across
// PatrimônioPro components. Callers should use errors.Is to match these
// values; producers wrap them with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Store-level errors.
	ErrStorage = errors.New("storage error")

	// Session errors surfaced through the error slot.
	ErrValidation         = errors.New("missing required fields")
	ErrDuplicateAccount   = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBusy               = errors.New("operation in progress")

	// Advisory errors. Never returned to callers of the advisory client,
	// only logged.
	ErrAdvisoryService = errors.New("advisory service error")

	// Host session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrGuestAccount = errors.New("guest account cannot be persisted")
)
