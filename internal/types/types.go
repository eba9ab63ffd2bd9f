// Package types holds the small value objects shared across modules.
package types

import "math"

// ID is an opaque entity identifier (ULID in production, free-form in tests).
type ID string

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Money carries an amount in rappen (centimes) to keep stored prices exact.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// MoneyFromCHF converts a CHF float to Money, rounding half-up to the rappen.
func MoneyFromCHF(v float64) Money {
	return Money{Amount: int64(math.Floor(v*100 + 0.5)), Currency: "CHF"}
}

// CHF returns the amount as a CHF float for display and arithmetic at the edge.
func (m Money) CHF() float64 {
	return float64(m.Amount) / 100
}

// RoundCHF rounds a CHF amount half-up to two decimals. Intermediate pricing
// math stays in full float precision; this is applied only at the final step.
func RoundCHF(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
