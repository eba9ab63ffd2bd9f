package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"romuo/internal/types"
)

var (
	ErrBadDriver     = errors.New("invalid driver registration")
	ErrBadVehicle    = errors.New("invalid vehicle registration")
	ErrDriverOffline = errors.New("driver is offline")
)

// Geo abstracts the live position index; nil disables nearby lookups.
type Geo interface {
	Upsert(ctx context.Context, driverID types.ID, p types.Point) error
	Remove(ctx context.Context, driverID types.ID) error
	Nearby(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]types.ID, error)
}

// ClassTable reports whether a vehicle class id is registered.
type ClassTable interface {
	Known(id string) bool
}

// Service owns all fleet mutations so driver and vehicle busy state cannot
// drift apart from the ride lifecycle.
type Service struct {
	store   Store
	geo     Geo
	classes ClassTable
	log     *zap.Logger
}

func NewService(store Store, geo Geo, classes ClassTable, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, geo: geo, classes: classes, log: log}
}

func (s *Service) RegisterDriver(ctx context.Context, identityID types.ID, name string) (*Driver, error) {
	if identityID == "" || name == "" {
		return nil, fmt.Errorf("%w: identity and name required", ErrBadDriver)
	}
	d := &Driver{
		ID:         types.ID(ulid.Make().String()),
		IdentityID: identityID,
		Name:       name,
		Status:     DriverOffline,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) RegisterVehicle(ctx context.Context, plate, classID string, capacity int, insuranceUntil, serviceDue time.Time) (*Vehicle, error) {
	if plate == "" {
		return nil, fmt.Errorf("%w: plate required", ErrBadVehicle)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrBadVehicle)
	}
	if s.classes != nil && !s.classes.Known(classID) {
		return nil, fmt.Errorf("%w: unknown vehicle class %q", ErrBadVehicle, classID)
	}
	v := &Vehicle{
		ID:             types.ID(ulid.Make().String()),
		Plate:          plate,
		ClassID:        classID,
		Capacity:       capacity,
		Status:         VehicleAvailable,
		InsuranceUntil: insuranceUntil,
		ServiceDue:     serviceDue,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AssignVehicle binds a vehicle to a driver. The previous binding, if any,
// is simply replaced.
func (s *Service) AssignVehicle(ctx context.Context, driverID, vehicleID types.ID) error {
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetVehicle(ctx, vehicleID); err != nil {
		return err
	}
	d.VehicleID = &vehicleID
	return s.store.UpdateDriver(ctx, d)
}

func (s *Service) SetDriverStatus(ctx context.Context, driverID types.ID, status DriverStatus) error {
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	d.Status = status
	if err := s.store.UpdateDriver(ctx, d); err != nil {
		return err
	}
	if status == DriverOffline && s.geo != nil {
		if err := s.geo.Remove(ctx, driverID); err != nil {
			s.log.Warn("geo index remove failed", zap.String("driver_id", string(driverID)), zap.Error(err))
		}
	}
	return nil
}

// RecordPing stores the driver's latest position. The geo index write is
// best-effort; the relational record stays authoritative.
func (s *Service) RecordPing(ctx context.Context, driverID types.ID, p types.Point) error {
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if d.Status == DriverOffline {
		return ErrDriverOffline
	}
	d.Location = &p
	if err := s.store.UpdateDriver(ctx, d); err != nil {
		return err
	}
	if s.geo != nil {
		if err := s.geo.Upsert(ctx, driverID, p); err != nil {
			s.log.Warn("geo index upsert failed", zap.String("driver_id", string(driverID)), zap.Error(err))
		}
	}
	return nil
}

// NearbyDrivers returns available drivers within radiusKm of p, closest
// first. Without a geo index it falls back to a full scan.
func (s *Service) NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]*Driver, error) {
	if s.geo != nil {
		ids, err := s.geo.Nearby(ctx, p, radiusKm, limit)
		if err == nil {
			out := make([]*Driver, 0, len(ids))
			for _, id := range ids {
				d, err := s.store.GetDriver(ctx, id)
				if err != nil {
					continue
				}
				if d.Status == DriverAvailable {
					out = append(out, d)
				}
			}
			return out, nil
		}
		s.log.Warn("geo search failed, scanning store", zap.Error(err))
	}

	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Driver
	for _, d := range drivers {
		if d.Status != DriverAvailable || d.Location == nil {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkBusy flips the driver to busy and the bound vehicle to in_use.
func (s *Service) MarkBusy(ctx context.Context, driverID types.ID) error {
	return s.setEngagement(ctx, driverID, DriverBusy, VehicleInUse)
}

// Release returns the driver and bound vehicle to the available pool.
func (s *Service) Release(ctx context.Context, driverID types.ID) error {
	return s.setEngagement(ctx, driverID, DriverAvailable, VehicleAvailable)
}

func (s *Service) setEngagement(ctx context.Context, driverID types.ID, ds DriverStatus, vs VehicleStatus) error {
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	d.Status = ds
	if err := s.store.UpdateDriver(ctx, d); err != nil {
		return err
	}
	if d.VehicleID == nil {
		return nil
	}
	v, err := s.store.GetVehicle(ctx, *d.VehicleID)
	if err != nil {
		return err
	}
	if v.Status == VehicleMaintenance {
		return nil
	}
	v.Status = vs
	return s.store.UpdateVehicle(ctx, v)
}

// TripCompleted increments the driver's completed-ride counter and releases
// the pair back to the available pool.
func (s *Service) TripCompleted(ctx context.Context, driverID types.ID) error {
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	d.Trips++
	if err := s.store.UpdateDriver(ctx, d); err != nil {
		return err
	}
	return s.Release(ctx, driverID)
}

func (s *Service) Driver(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.GetDriver(ctx, id)
}

func (s *Service) Vehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

func (s *Service) Drivers(ctx context.Context) ([]*Driver, error) {
	return s.store.ListDrivers(ctx)
}

func (s *Service) Vehicles(ctx context.Context) ([]*Vehicle, error) {
	return s.store.ListVehicles(ctx)
}

// DriverByIdentity resolves the fleet record for an authenticated driver.
func (s *Service) DriverByIdentity(ctx context.Context, identityID types.ID) (*Driver, error) {
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		if d.IdentityID == identityID {
			return d, nil
		}
	}
	return nil, ErrNotFound
}
