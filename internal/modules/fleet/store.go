package fleet

import (
	"context"
	"errors"

	"romuo/internal/types"
)

var (
	ErrNotFound       = errors.New("fleet record not found")
	ErrDuplicatePlate = errors.New("license plate already registered")
)

// Store persists fleet records. Updates are whole-record writes; callers
// read-modify-write under the service, which is the only mutator.
type Store interface {
	CreateDriver(ctx context.Context, d *Driver) error
	UpdateDriver(ctx context.Context, d *Driver) error
	GetDriver(ctx context.Context, id types.ID) (*Driver, error)
	ListDrivers(ctx context.Context) ([]*Driver, error)

	// CreateVehicle returns ErrDuplicatePlate when the plate is already
	// held by another active vehicle.
	CreateVehicle(ctx context.Context, v *Vehicle) error
	UpdateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error)
	ListVehicles(ctx context.Context) ([]*Vehicle, error)
}
