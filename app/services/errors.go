package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/shashiranjanraj/storefront/app/repositories"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = repositories.ErrNotFound
	ErrInvalidID          = repositories.ErrInvalidID

	// Terminal webhook failures. Redelivering the same envelope cannot fix them.
	ErrInvalidEvent   = errors.New("webhook signature verification failed")
	ErrMalformedEvent = errors.New("malformed webhook event")
	ErrMissingTotal   = errors.New("checkout session has no amount_total")
)

// ValidationError carries field-level messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsTerminal reports whether a webhook error must not be retried.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrMissingTotal)
}
