package catalog

// DefaultClasses is the standard Swiss fleet loaded at startup. Deployments
// can override it through configuration; tests build their own fixtures.
func DefaultClasses() []VehicleClass {
	return []VehicleClass{
		{
			ID: "eco", Name: "Eco", Category: "standard",
			BaseFare: 6.00, RatePerKm: 2.50, RatePerMinute: 0.40,
			MinPassengers: 1, MaxPassengers: 4,
		},
		{
			ID: "berline", Name: "Berline Luxe", Category: "premium",
			BaseFare: 10.00, RatePerKm: 3.50, RatePerMinute: 0.60,
			MinPassengers: 1, MaxPassengers: 4,
		},
		{
			ID: "van", Name: "Van Premium", Category: "group",
			BaseFare: 15.00, RatePerKm: 4.50, RatePerMinute: 0.80,
			MinPassengers: 1, MaxPassengers: 7,
		},
		{
			ID: "bus", Name: "Minibus", Category: "group",
			BaseFare: 25.00, RatePerKm: 6.00, RatePerMinute: 1.00,
			MinPassengers: 8, MaxPassengers: 50,
		},
	}
}
