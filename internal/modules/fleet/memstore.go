package fleet

import (
	"context"
	"strings"
	"sync"
	"time"

	"romuo/internal/types"
)

// MemStore is an in-memory Store used by tests and single-node setups.
type MemStore struct {
	mu       sync.RWMutex
	drivers  map[types.ID]*Driver
	vehicles map[types.ID]*Vehicle
	dOrder   []types.ID
	vOrder   []types.ID
}

func NewMemStore() *MemStore {
	return &MemStore{
		drivers:  make(map[types.ID]*Driver),
		vehicles: make(map[types.ID]*Vehicle),
	}
}

func (m *MemStore) CreateDriver(_ context.Context, d *Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	m.drivers[d.ID] = cloneDriver(d)
	m.dOrder = append(m.dOrder, d.ID)
	return nil
}

func (m *MemStore) UpdateDriver(_ context.Context, d *Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[d.ID]; !ok {
		return ErrNotFound
	}
	m.drivers[d.ID] = cloneDriver(d)
	return nil
}

func (m *MemStore) GetDriver(_ context.Context, id types.ID) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDriver(d), nil
}

func (m *MemStore) ListDrivers(_ context.Context) ([]*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Driver, 0, len(m.dOrder))
	for _, id := range m.dOrder {
		out = append(out, cloneDriver(m.drivers[id]))
	}
	return out, nil
}

func (m *MemStore) CreateVehicle(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vehicles {
		if strings.EqualFold(existing.Plate, v.Plate) {
			return ErrDuplicatePlate
		}
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	cp := *v
	m.vehicles[v.ID] = &cp
	m.vOrder = append(m.vOrder, v.ID)
	return nil
}

func (m *MemStore) UpdateVehicle(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; !ok {
		return ErrNotFound
	}
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *MemStore) GetVehicle(_ context.Context, id types.ID) (*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *MemStore) ListVehicles(_ context.Context) ([]*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Vehicle, 0, len(m.vOrder))
	for _, id := range m.vOrder {
		cp := *m.vehicles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func cloneDriver(d *Driver) *Driver {
	cp := *d
	if d.Location != nil {
		loc := *d.Location
		cp.Location = &loc
	}
	if d.VehicleID != nil {
		vid := *d.VehicleID
		cp.VehicleID = &vid
	}
	return &cp
}
