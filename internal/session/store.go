package session

import (
	"context"
	"errors"
)

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound is returned when no live session exists for the key.
	// Expired sessions read as not found.
	ErrNotFound = errors.New("session: not found")
	// ErrConflict is returned by durable stores when a concurrent writer
	// updated the session first. The caller's read-modify-write lost.
	ErrConflict = errors.New("session: concurrent update conflict")
)

// Store is the session persistence seam. The in-memory implementation is
// correct for single-process deployments; GormStore adds multi-process
// safety via optimistic compare-and-swap. All operations are idempotent.
type Store interface {
	// Get returns the live session for an address. Expired sessions are
	// lazily deleted and reported as ErrNotFound.
	Get(ctx context.Context, address string) (*Session, error)

	// Put persists the session, creating or updating as needed. Durable
	// implementations return ErrConflict when the stored version moved.
	Put(ctx context.Context, s *Session) error

	// Delete removes the session for an address. Deleting a missing
	// session is not an error.
	Delete(ctx context.Context, address string) error

	// GetByTenant returns the live session owned by a tenant, via the
	// secondary index. ErrNotFound when absent or expired.
	GetByTenant(ctx context.Context, tenantID string) (*Session, error)
}

// Sweeper is an optional store capability: bulk removal of expired rows.
// Purely storage hygiene — correctness never depends on it.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}
