package ride

import (
	"context"
	"errors"
	"time"

	"romuo/internal/types"
)

var ErrNotFound = errors.New("ride not found")

// Store persists rides. UpdateStatus is the only status mutator and must be
// atomic: it succeeds only when the stored row still carries (from, version),
// so concurrent transitions race on the version and exactly one wins.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)

	// UpdateStatus compare-and-swaps the ride from (from, version) to
	// (to, version+1), binding driverID when non-nil and stamping the
	// timestamp column matching the target status. Returns false with nil
	// error when the guard no longer holds.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error)

	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, rideID types.ID) ([]*Event, error)

	ListByStatus(ctx context.Context, status Status) ([]*Ride, error) // oldest first
	ListActive(ctx context.Context) ([]*Ride, error)
	ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error)
	ListByRequester(ctx context.Context, requesterID types.ID) ([]*Ride, error) // newest first
	CompletedByDriver(ctx context.Context, driverID types.ID, since time.Time) ([]*Ride, error)

	// ListWindow returns rides whose scheduled time (falling back to
	// creation time) lies in [from, to).
	ListWindow(ctx context.Context, from, to time.Time) ([]*Ride, error)
}
