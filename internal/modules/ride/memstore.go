package ride

import (
	"context"
	"sort"
	"sync"
	"time"

	"romuo/internal/types"
)

// MemStore is an in-memory Store with the same CAS semantics as the
// PostgreSQL store. Tests rely on it to exercise concurrent transitions.
type MemStore struct {
	mu     sync.Mutex
	rides  map[types.ID]*Ride
	order  []types.ID
	events []*Event
	nextEv int64
}

func NewMemStore() *MemStore {
	return &MemStore{rides: make(map[types.ID]*Ride)}
}

func (m *MemStore) Create(_ context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.rides[r.ID] = cloneRide(r)
	m.order = append(m.order, r.ID)
	return nil
}

func (m *MemStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRide(r), nil
}

func (m *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	now := time.Now().UTC()
	r.Status = to
	r.StatusVersion = version + 1
	if driverID != nil {
		d := *driverID
		r.DriverID = &d
	}
	switch to {
	case StatusAssigned:
		r.AssignedAt = &now
	case StatusInProgress:
		r.PickedUpAt = &now
	case StatusCompleted:
		r.CompletedAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
	}
	return true, nil
}

func (m *MemStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEv++
	e.ID = m.nextEv
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *MemStore) Events(_ context.Context, rideID types.ID) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Event
	for _, e := range m.events {
		if e.RideID == rideID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) ListByStatus(_ context.Context, status Status) ([]*Ride, error) {
	return m.filter(func(r *Ride) bool { return r.Status == status }), nil
}

func (m *MemStore) ListActive(_ context.Context) ([]*Ride, error) {
	return m.filter(func(r *Ride) bool { return r.Status.Active() }), nil
}

func (m *MemStore) ActiveByDriver(_ context.Context, driverID types.ID) (*Ride, error) {
	matches := m.filter(func(r *Ride) bool {
		return r.Status.Active() && r.DriverID != nil && *r.DriverID == driverID
	})
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

func (m *MemStore) ListByRequester(_ context.Context, requesterID types.ID) ([]*Ride, error) {
	out := m.filter(func(r *Ride) bool { return r.RequesterID == requesterID })
	// newest booking first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *MemStore) CompletedByDriver(_ context.Context, driverID types.ID, since time.Time) ([]*Ride, error) {
	return m.filter(func(r *Ride) bool {
		return r.Status == StatusCompleted &&
			r.DriverID != nil && *r.DriverID == driverID &&
			r.CompletedAt != nil && !r.CompletedAt.Before(since)
	}), nil
}

func (m *MemStore) ListWindow(_ context.Context, from, to time.Time) ([]*Ride, error) {
	out := m.filter(func(r *Ride) bool {
		at := r.CreatedAt
		if r.ScheduledAt != nil {
			at = *r.ScheduledAt
		}
		return !at.Before(from) && at.Before(to)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveTime(out[i]).Before(effectiveTime(out[j]))
	})
	return out, nil
}

func effectiveTime(r *Ride) time.Time {
	if r.ScheduledAt != nil {
		return *r.ScheduledAt
	}
	return r.CreatedAt
}

// filter walks rides in insertion order, which is creation order, so
// status listings come back oldest first.
func (m *MemStore) filter(keep func(*Ride) bool) []*Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Ride
	for _, id := range m.order {
		if r := m.rides[id]; keep(r) {
			out = append(out, cloneRide(r))
		}
	}
	return out
}

func cloneRide(r *Ride) *Ride {
	cp := *r
	if r.DriverID != nil {
		d := *r.DriverID
		cp.DriverID = &d
	}
	if r.Guest != nil {
		g := *r.Guest
		cp.Guest = &g
	}
	cp.ScheduledAt = cloneTime(r.ScheduledAt)
	cp.AssignedAt = cloneTime(r.AssignedAt)
	cp.PickedUpAt = cloneTime(r.PickedUpAt)
	cp.CompletedAt = cloneTime(r.CompletedAt)
	cp.CancelledAt = cloneTime(r.CancelledAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
