// Package pricing resolves a final charge from the fixed-zone table, the
// distance/time tariff and the stacking discount rules.
package pricing

import (
	"time"

	"romuo/internal/types"
)

const (
	MethodFixedZone = "fixed_zone"
	MethodHybrid    = "hybrid"
)

// Discount tags reported in the breakdown.
const (
	DiscountYouth       = "youth"
	DiscountRideSharing = "ride_sharing"
	DiscountOffPeak     = "off_peak"
)

// QuoteRequest carries everything a price computation may consider.
// Optional inputs are pointers; absent means "not provided".
type QuoteRequest struct {
	VehicleClassID string
	Pickup         *types.Point
	Destination    *types.Point
	DistanceKm     float64
	DurationMin    *float64
	Passengers     int
	RiderAge       *int
	RideSharing    bool
	ScheduledAt    *time.Time
}

// PriceBreakdown is the structured quote returned to callers. Monetary
// fields are rounded half-up to two decimals; the computation itself keeps
// full float precision until this edge.
type PriceBreakdown struct {
	BasePrice   float64  `json:"base_price"`
	FinalPrice  float64  `json:"final_price"`
	DiscountPct float64  `json:"discount_pct"`
	Applied     []string `json:"applied_discounts"`
	Method      string   `json:"pricing_method"`
	Currency    string   `json:"currency"`
	ZoneID      types.ID `json:"zone_id,omitempty"`
	DistanceKm  float64  `json:"distance_km"`
	DurationMin float64  `json:"duration_min"`
}
