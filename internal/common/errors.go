// Package common defines shared constants and sentinel errors used across
// client and server layers of TaskDeck. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration errors.
	ErrorValidation    = errors.New("validation error")
	ErrorDuplicateUser = errors.New("user already exists")

	// Login errors. Absent user and wrong password intentionally collapse
	// into the same value so callers cannot enumerate accounts.
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Token errors (bad signature, malformed, wrong kind).
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Refresh-path error: the token verified but the account is gone.
	ErrorUserNotFound = errors.New("user not found")
)
