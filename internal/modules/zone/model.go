// Package zone implements the fixed-price zone registry and the radius-based
// route matcher that overrides the distance tariff.
package zone

import (
	"romuo/internal/types"
)

// Endpoint is one side of a fixed route: a centre point plus a catch radius.
type Endpoint struct {
	Point    types.Point `json:"point"`
	RadiusKm float64     `json:"radius_km"`
}

// Contains reports whether p lies within the endpoint's radius.
func (e Endpoint) Contains(p types.Point) bool {
	return haversineKm(e.Point.Lat, e.Point.Lng, p.Lat, p.Lng) <= e.RadiusKm
}

// Zone is a registered origin/destination pairing with a flat price per
// vehicle class. Zones are never hard-deleted; Active=false retires them.
type Zone struct {
	ID            types.ID           `json:"id"`
	Name          string             `json:"name"`
	Origin        Endpoint           `json:"origin"`
	Destination   Endpoint           `json:"destination"`
	Prices        map[string]float64 `json:"prices"` // vehicle class id -> CHF
	Bidirectional bool               `json:"bidirectional"`
	Active        bool               `json:"active"`
	Position      int                `json:"position"` // registration order, drives match precedence
}

type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// Match is a successful zone hit for a concrete route and vehicle class.
type Match struct {
	ZoneID    types.ID  `json:"zone_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Direction Direction `json:"direction"`
}
