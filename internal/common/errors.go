// Package common defines shared constants and sentinel errors used across
// the mediakeeper components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository/storage-level errors.
	ErrNotFound   = errors.New("not found")
	ErrNoBackends = errors.New("no storage backends configured")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Validation / item-specific errors.
	ErrInvalidItem     = errors.New("invalid catalog item")
	ErrUnknownCatalog  = errors.New("unknown catalog")
	ErrDuplicateItemID = errors.New("duplicate item id")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
