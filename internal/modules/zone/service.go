package zone

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"romuo/internal/types"
)

var ErrBadZone = errors.New("invalid zone definition")

// ClassTable answers whether a vehicle class id is registered; satisfied by
// the vehicle catalog.
type ClassTable interface {
	Known(id string) bool
}

// Service manages the zone registry and answers route match queries.
type Service struct {
	store   Store
	classes ClassTable
}

func NewService(store Store, classes ClassTable) *Service {
	return &Service{store: store, classes: classes}
}

// Create validates and registers a new zone. Price table keys must be known
// vehicle classes and both radii must be positive.
func (s *Service) Create(ctx context.Context, z *Zone) error {
	if err := s.validate(z); err != nil {
		return err
	}
	if z.ID == "" {
		z.ID = types.ID(ulid.Make().String())
	}
	z.Active = true
	return s.store.Create(ctx, z)
}

func (s *Service) Update(ctx context.Context, z *Zone) error {
	if err := s.validate(z); err != nil {
		return err
	}
	return s.store.Update(ctx, z)
}

// Deactivate retires a zone. Zones are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, id types.ID) error {
	z, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	z.Active = false
	return s.store.Update(ctx, z)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Zone, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Zone, error) {
	return s.store.List(ctx)
}

// Match tests the route against every active zone in registration order and
// returns the first hit whose price table carries the requested class.
// The forward pairing is tried first; bidirectional zones also match the
// reverse pairing. A nil result with nil error means no zone applies and the
// caller should fall back to the distance tariff.
func (s *Service) Match(ctx context.Context, pickup, dest types.Point, classID string) (*Match, error) {
	zones, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, z := range zones {
		if !z.Active {
			continue
		}
		price, ok := z.Prices[classID]
		if !ok {
			continue
		}
		if z.Origin.Contains(pickup) && z.Destination.Contains(dest) {
			return &Match{ZoneID: z.ID, Name: z.Name, Price: price, Direction: DirectionForward}, nil
		}
		if z.Bidirectional && z.Origin.Contains(dest) && z.Destination.Contains(pickup) {
			return &Match{ZoneID: z.ID, Name: z.Name, Price: price, Direction: DirectionReverse}, nil
		}
	}
	return nil, nil
}

func (s *Service) validate(z *Zone) error {
	if z.Name == "" {
		return fmt.Errorf("%w: name required", ErrBadZone)
	}
	if z.Origin.RadiusKm <= 0 || z.Destination.RadiusKm <= 0 {
		return fmt.Errorf("%w: radii must be positive", ErrBadZone)
	}
	if len(z.Prices) == 0 {
		return fmt.Errorf("%w: price table empty", ErrBadZone)
	}
	if s.classes != nil {
		for classID := range z.Prices {
			if !s.classes.Known(classID) {
				return fmt.Errorf("%w: unknown vehicle class %q in price table", ErrBadZone, classID)
			}
		}
	}
	return nil
}
