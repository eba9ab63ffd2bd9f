package zone

import (
	"context"
	"errors"

	"romuo/internal/types"
)

var ErrNotFound = errors.New("zone not found")

// Store persists zones. List must return zones ordered by Position ascending;
// match precedence depends on that ordering.
type Store interface {
	Create(ctx context.Context, z *Zone) error
	Update(ctx context.Context, z *Zone) error
	Get(ctx context.Context, id types.ID) (*Zone, error)
	// List returns all zones (active and retired) in registration order.
	List(ctx context.Context) ([]*Zone, error)
}
