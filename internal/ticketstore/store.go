// Package ticketstore provides a short-lived key/value store with per-entry TTL, an attempt
// counter and atomic compare-and-delete. It backs password reset tickets, claim codes and the
// bearer token denylist.
package ticketstore

import (
	"context"
	"time"

	apperrors "github.com/allisson/identity/internal/errors"
)

// ErrNotFound is returned when a key is absent or its entry has expired.
var ErrNotFound = apperrors.Wrap(apperrors.ErrNotFound, "ticket not found")

// Entry is a stored value together with its attempt counter.
type Entry struct {
	Value   string
	Counter int64
}

// Store is an ephemeral key/value store. Expired entries behave as absent before they are evicted.
type Store interface {
	// Put stores value under key for ttl, overwriting any previous entry and resetting its counter.
	// A non-positive ttl keeps the entry until it is deleted.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live entry under key or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndDelete removes key only if its value equals expected, reporting whether it did.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)

	// Increment atomically adds one to the counter of a live entry and returns the new value.
	// It never creates an entry: an absent key returns ErrNotFound.
	Increment(ctx context.Context, key string) (int64, error)
}
