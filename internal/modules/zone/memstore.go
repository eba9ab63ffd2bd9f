package zone

import (
	"context"
	"sync"

	"romuo/internal/types"
)

// MemStore is the in-memory Store used by tests and local development.
// Insertion order is preserved, which is what drives match precedence.
type MemStore struct {
	mu    sync.RWMutex
	zones []*Zone
	byID  map[types.ID]*Zone
	next  int
}

func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[types.ID]*Zone)}
}

func (s *MemStore) Create(_ context.Context, z *Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneZone(z)
	cp.Position = s.next
	s.next++
	s.zones = append(s.zones, cp)
	s.byID[cp.ID] = cp
	z.Position = cp.Position
	return nil
}

func (s *MemStore) Update(_ context.Context, z *Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[z.ID]
	if !ok {
		return ErrNotFound
	}
	pos := cur.Position
	*cur = *cloneZone(z)
	cur.Position = pos
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneZone(z), nil
}

func (s *MemStore) List(_ context.Context) ([]*Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Zone, len(s.zones))
	for i, z := range s.zones {
		out[i] = cloneZone(z)
	}
	return out, nil
}

func cloneZone(z *Zone) *Zone {
	cp := *z
	cp.Prices = make(map[string]float64, len(z.Prices))
	for k, v := range z.Prices {
		cp.Prices[k] = v
	}
	return &cp
}
