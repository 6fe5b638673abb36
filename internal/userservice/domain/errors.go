package domain

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken is distinct from ErrInvalidInput so registration can
	// surface a duplicate email as a validation failure without leaking
	// storage details.
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
