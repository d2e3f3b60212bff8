package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Identity failures. Each is reported with its own message and unwraps to ErrUnauthorized.
var (
	ErrTokenExpired   = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrTokenInvalid   = fmt.Errorf("token invalid: %w", ErrUnauthorized)
	ErrTokenMalformed = fmt.Errorf("token malformed: %w", ErrUnauthorized)
)
