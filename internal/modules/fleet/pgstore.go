package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"romuo/internal/types"
)

// PGStore is the PostgreSQL Store backed by the drivers and vehicles tables.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) CreateDriver(ctx context.Context, d *Driver) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO drivers (id, identity_id, name, status, lat, lng, vehicle_id, trips)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.IdentityID, d.Name, d.Status, latOf(d.Location), lngOf(d.Location), d.VehicleID, d.Trips)
	return err
}

func (s *PGStore) UpdateDriver(ctx context.Context, d *Driver) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE drivers
		SET name = $2, status = $3, lat = $4, lng = $5, vehicle_id = $6, trips = $7
		WHERE id = $1`,
		d.ID, d.Name, d.Status, latOf(d.Location), lngOf(d.Location), d.VehicleID, d.Trips)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, identity_id, name, status, lat, lng, vehicle_id, trips, created_at
		FROM drivers WHERE id = $1`, id)
	return scanDriver(row)
}

func (s *PGStore) ListDrivers(ctx context.Context) ([]*Driver, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, identity_id, name, status, lat, lng, vehicle_id, trips, created_at
		FROM drivers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vehicles (id, plate, class_id, capacity, status, insurance_until, service_due)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Plate, v.ClassID, v.Capacity, v.Status, v.InsuranceUntil, v.ServiceDue)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePlate
	}
	return err
}

func (s *PGStore) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vehicles
		SET plate = $2, class_id = $3, capacity = $4, status = $5, insurance_until = $6, service_due = $7
		WHERE id = $1`,
		v.ID, v.Plate, v.ClassID, v.Capacity, v.Status, v.InsuranceUntil, v.ServiceDue)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, plate, class_id, capacity, status, insurance_until, service_due, created_at
		FROM vehicles WHERE id = $1`, id)
	v := &Vehicle{}
	err := row.Scan(&v.ID, &v.Plate, &v.ClassID, &v.Capacity, &v.Status, &v.InsuranceUntil, &v.ServiceDue, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *PGStore) ListVehicles(ctx context.Context) ([]*Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, plate, class_id, capacity, status, insurance_until, service_due, created_at
		FROM vehicles ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		v := &Vehicle{}
		if err := rows.Scan(&v.ID, &v.Plate, &v.ClassID, &v.Capacity, &v.Status, &v.InsuranceUntil, &v.ServiceDue, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanDriver(row pgx.Row) (*Driver, error) {
	d := &Driver{}
	var lat, lng *float64
	err := row.Scan(&d.ID, &d.IdentityID, &d.Name, &d.Status, &lat, &lng, &d.VehicleID, &d.Trips, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		d.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	return d, nil
}

func latOf(p *types.Point) *float64 {
	if p == nil {
		return nil
	}
	return &p.Lat
}

func lngOf(p *types.Point) *float64 {
	if p == nil {
		return nil
	}
	return &p.Lng
}
