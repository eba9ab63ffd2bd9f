// Package maps wraps the Google Maps Directions API for trip estimates.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"romuo/internal/types"
)

// TravelEstimate is a driving-mode estimate between two coordinates.
type TravelEstimate struct {
	DistanceKm  float64
	DurationMin float64
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate returns distance and duration for a driving trip between the two
// points. Results are biased to Switzerland.
func (s *RouteService) Estimate(ctx context.Context, origin, destination types.Point) (*TravelEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
		Language:    "fr",
		Region:      "CH",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return &TravelEstimate{
		DistanceKm:  float64(leg.Distance.Meters) / 1000,
		DurationMin: leg.Duration.Minutes(),
	}, nil
}
