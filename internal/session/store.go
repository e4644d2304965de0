package session

import (
	"context"
	"errors"

	"github.com/clipforge/clipforge/internal/domain"
)

// ErrNoChange can be returned by an UpdateFunc to leave the stored session
// untouched. Update then returns the session as read and a nil error.
var ErrNoChange = errors.New("no change")

// UpdateFunc mutates a session inside an atomic update.
// It may be called more than once when a backend retries on conflict, so it
// must only depend on the session it is given.
type UpdateFunc func(s *domain.Session) error

// Store keeps per-visitor application state.
// Sessions expire after a period without updates.
type Store interface {
	// Create stores a fresh session with a new id.
	Create(ctx context.Context) (*domain.Session, error)

	// Get returns a copy of the session, or domain.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update atomically applies fn to the session, creating it if missing,
	// and returns a copy of the stored result.
	Update(ctx context.Context, id string, fn UpdateFunc) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases background resources.
	Close() error
}
