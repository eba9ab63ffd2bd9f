package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"romuo/internal/types"
)

// PGStore is the PostgreSQL Store over the rides and ride_events tables.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const rideColumns = `
	id, requester_id, guest_name, guest_phone, driver_id,
	pickup_lat, pickup_lng, pickup_addr, dest_lat, dest_lng, dest_addr,
	vehicle_class_id, passengers, distance_km, duration_min,
	price_rappen, price_currency, pricing_method, zone_id,
	payment_method, billing_type, status, status_version,
	scheduled_at, notes, created_at,
	assigned_at, picked_up_at, completed_at, cancelled_at`

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	var guestName, guestPhone *string
	if r.Guest != nil {
		guestName, guestPhone = &r.Guest.Name, &r.Guest.Phone
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rides (
			id, requester_id, guest_name, guest_phone, driver_id,
			pickup_lat, pickup_lng, pickup_addr, dest_lat, dest_lng, dest_addr,
			vehicle_class_id, passengers, distance_km, duration_min,
			price_rappen, price_currency, pricing_method, zone_id,
			payment_method, billing_type, status, status_version,
			scheduled_at, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)`,
		r.ID, r.RequesterID, guestName, guestPhone, r.DriverID,
		r.Pickup.Lat, r.Pickup.Lng, r.PickupAddr,
		r.Destination.Lat, r.Destination.Lng, r.DestinationAddr,
		r.VehicleClassID, r.Passengers, r.DistanceKm, r.DurationMin,
		r.Price.Amount, r.Price.Currency, r.PricingMethod, nullID(r.ZoneID),
		r.PaymentMethod, r.BillingType, r.Status, r.StatusVersion,
		r.ScheduledAt, r.Notes)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	return scanRide(row)
}

// UpdateStatus is a single guarded UPDATE: the WHERE clause carries the
// expected status and version, and the CASE expressions stamp only the
// timestamp column belonging to the target status. Zero rows affected means
// another transition won the race.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rides
		SET status = $3,
		    status_version = status_version + 1,
		    driver_id = COALESCE($5, driver_id),
		    assigned_at  = CASE WHEN $3 = 'assigned'    THEN NOW() ELSE assigned_at END,
		    picked_up_at = CASE WHEN $3 = 'in_progress' THEN NOW() ELSE picked_up_at END,
		    completed_at = CASE WHEN $3 = 'completed'   THEN NOW() ELSE completed_at END,
		    cancelled_at = CASE WHEN $3 = 'cancelled'   THEN NOW() ELSE cancelled_at END
		WHERE id = $1 AND status = $2 AND status_version = $4`,
		id, from, to, version, driverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO ride_events (ride_id, kind, actor_id, actor_role, from_status, to_status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		e.RideID, e.Kind, e.ActorID, e.ActorRole, nullStatus(e.From), nullStatus(e.To), e.Note)
	return row.Scan(&e.ID, &e.CreatedAt)
}

func (s *PGStore) Events(ctx context.Context, rideID types.ID) ([]*Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ride_id, kind, actor_id, actor_role,
		       COALESCE(from_status, ''), COALESCE(to_status, ''), note, created_at
		FROM ride_events WHERE ride_id = $1 ORDER BY id`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.RideID, &e.Kind, &e.ActorID, &e.ActorRole, &e.From, &e.To, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PGStore) ListByStatus(ctx context.Context, status Status) ([]*Ride, error) {
	return s.query(ctx, `SELECT `+rideColumns+` FROM rides WHERE status = $1 ORDER BY created_at, id`, status)
}

func (s *PGStore) ListActive(ctx context.Context) ([]*Ride, error) {
	return s.query(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE status IN ('assigned', 'driver_en_route', 'arrived', 'in_progress')
		ORDER BY created_at, id`)
}

func (s *PGStore) ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1 AND status IN ('assigned', 'driver_en_route', 'arrived', 'in_progress')
		ORDER BY created_at LIMIT 1`, driverID)
	return scanRide(row)
}

func (s *PGStore) ListByRequester(ctx context.Context, requesterID types.ID) ([]*Ride, error) {
	return s.query(ctx, `SELECT `+rideColumns+` FROM rides WHERE requester_id = $1 ORDER BY created_at DESC, id DESC`, requesterID)
}

func (s *PGStore) CompletedByDriver(ctx context.Context, driverID types.ID, since time.Time) ([]*Ride, error) {
	return s.query(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE driver_id = $1 AND status = 'completed' AND completed_at >= $2
		ORDER BY completed_at, id`, driverID, since)
}

func (s *PGStore) ListWindow(ctx context.Context, from, to time.Time) ([]*Ride, error) {
	return s.query(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE COALESCE(scheduled_at, created_at) >= $1 AND COALESCE(scheduled_at, created_at) < $2
		ORDER BY COALESCE(scheduled_at, created_at), id`, from, to)
}

func (s *PGStore) query(ctx context.Context, sql string, args ...any) ([]*Ride, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRide(row pgx.Row) (*Ride, error) {
	r := &Ride{}
	var guestName, guestPhone, zoneID *string
	err := row.Scan(
		&r.ID, &r.RequesterID, &guestName, &guestPhone, &r.DriverID,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.PickupAddr,
		&r.Destination.Lat, &r.Destination.Lng, &r.DestinationAddr,
		&r.VehicleClassID, &r.Passengers, &r.DistanceKm, &r.DurationMin,
		&r.Price.Amount, &r.Price.Currency, &r.PricingMethod, &zoneID,
		&r.PaymentMethod, &r.BillingType, &r.Status, &r.StatusVersion,
		&r.ScheduledAt, &r.Notes, &r.CreatedAt,
		&r.AssignedAt, &r.PickedUpAt, &r.CompletedAt, &r.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if guestName != nil {
		r.Guest = &GuestContact{Name: *guestName}
		if guestPhone != nil {
			r.Guest.Phone = *guestPhone
		}
	}
	if zoneID != nil {
		r.ZoneID = types.ID(*zoneID)
	}
	return r, nil
}

func nullID(id types.ID) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}

func nullStatus(s Status) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}
