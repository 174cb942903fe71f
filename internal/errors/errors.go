// Package errors holds the transport-neutral sentinels every identity error wraps. The HTTP
// layer maps each sentinel to one status code; use cases never pick status codes themselves.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized covers bad credentials and bad or revoked tokens alike.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrLocked reports an exhausted attempt budget, such as a claim ticket destroyed after
	// too many wrong codes.
	ErrLocked = errors.New("locked")
)

// New returns a plain error, for sentinels that must not map to any status.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it matchable by Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
