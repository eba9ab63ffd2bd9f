// Package catalog holds the vehicle class reference data and the
// passenger-count suitability filter.
package catalog

// VehicleClass describes one bookable vehicle category and its tariff.
// Tariff amounts are CHF; rates are per kilometre / per minute.
type VehicleClass struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	BaseFare      float64 `json:"base_fare"`
	RatePerKm     float64 `json:"rate_per_km"`
	RatePerMinute float64 `json:"rate_per_minute"`
	MinPassengers int     `json:"min_passengers"`
	MaxPassengers int     `json:"max_passengers"`
}

// Fits reports whether the class can carry the given passenger count.
func (c VehicleClass) Fits(passengers int) bool {
	return passengers >= c.MinPassengers && passengers <= c.MaxPassengers
}
