// Package common defines shared constants and sentinel errors used across
// PassVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (bad input shape, weak password, disallowed
	// characters). Always recoverable and returned to the caller.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")

	// Cryptography errors. Messages wrapping this value must never carry
	// key material or plaintext.
	ErrDecryption = errors.New("decryption failed")

	// Token lifecycle errors (sessions and reset tokens).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Durable storage errors (persist/load/backup I/O).
	ErrStorage = errors.New("storage error")
)
