package fleet

import (
	"context"

	"github.com/redis/go-redis/v9"

	"romuo/internal/types"
)

const driverGeoKey = "fleet:drivers"

// GeoIndex keeps the live driver positions in a Redis GEO set so nearby
// lookups stay off the relational store. Entries are best-effort: a stale or
// missing entry only degrades dispatch suggestions.
type GeoIndex struct {
	rdb *redis.Client
}

func NewGeoIndex(rdb *redis.Client) *GeoIndex {
	return &GeoIndex{rdb: rdb}
}

func (g *GeoIndex) Upsert(ctx context.Context, driverID types.ID, p types.Point) error {
	return g.rdb.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(driverID),
		Latitude:  p.Lat,
		Longitude: p.Lng,
	}).Err()
}

func (g *GeoIndex) Remove(ctx context.Context, driverID types.ID) error {
	return g.rdb.ZRem(ctx, driverGeoKey, string(driverID)).Err()
}

// Nearby returns driver ids within radiusKm of p, closest first.
func (g *GeoIndex) Nearby(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]types.ID, error) {
	locs, err := g.rdb.GeoSearchLocation(ctx, driverGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   p.Lat,
			Longitude:  p.Lng,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(locs))
	for _, loc := range locs {
		ids = append(ids, types.ID(loc.Name))
	}
	return ids, nil
}
