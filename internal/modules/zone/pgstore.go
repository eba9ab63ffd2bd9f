package zone

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"romuo/internal/types"
)

// PGStore persists zones in Postgres. Position is assigned from a sequence at
// insert time so registration order survives restarts.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, z *Zone) error {
	prices, err := json.Marshal(z.Prices)
	if err != nil {
		return err
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO zones (
			id, name,
			origin_lat, origin_lng, origin_radius_km,
			dest_lat, dest_lng, dest_radius_km,
			prices, bidirectional, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING position`,
		string(z.ID), z.Name,
		z.Origin.Point.Lat, z.Origin.Point.Lng, z.Origin.RadiusKm,
		z.Destination.Point.Lat, z.Destination.Point.Lng, z.Destination.RadiusKm,
		prices, z.Bidirectional, z.Active,
	)
	return row.Scan(&z.Position)
}

func (s *PGStore) Update(ctx context.Context, z *Zone) error {
	prices, err := json.Marshal(z.Prices)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE zones SET
			name = $2,
			origin_lat = $3, origin_lng = $4, origin_radius_km = $5,
			dest_lat = $6, dest_lng = $7, dest_radius_km = $8,
			prices = $9, bidirectional = $10, active = $11
		WHERE id = $1`,
		string(z.ID), z.Name,
		z.Origin.Point.Lat, z.Origin.Point.Lng, z.Origin.RadiusKm,
		z.Destination.Point.Lat, z.Destination.Point.Lng, z.Destination.RadiusKm,
		prices, z.Bidirectional, z.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Zone, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name,
		       origin_lat, origin_lng, origin_radius_km,
		       dest_lat, dest_lng, dest_radius_km,
		       prices, bidirectional, active, position
		FROM zones WHERE id = $1`, string(id))
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return z, err
}

func (s *PGStore) List(ctx context.Context) ([]*Zone, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name,
		       origin_lat, origin_lng, origin_radius_km,
		       dest_lat, dest_lng, dest_radius_km,
		       prices, bidirectional, active, position
		FROM zones ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func scanZone(row pgx.Row) (*Zone, error) {
	var z Zone
	var prices []byte
	err := row.Scan(
		&z.ID, &z.Name,
		&z.Origin.Point.Lat, &z.Origin.Point.Lng, &z.Origin.RadiusKm,
		&z.Destination.Point.Lat, &z.Destination.Point.Lng, &z.Destination.RadiusKm,
		&prices, &z.Bidirectional, &z.Active, &z.Position,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prices, &z.Prices); err != nil {
		return nil, err
	}
	return &z, nil
}
