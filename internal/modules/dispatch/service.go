// Package dispatch answers the operational read queries: pending queue,
// active board, driver earnings and the booking calendar.
package dispatch

import (
	"context"
	"errors"
	"time"

	"romuo/internal/modules/fleet"
	"romuo/internal/modules/ride"
	"romuo/internal/types"
)

var ErrBadPeriod = errors.New("unknown earnings period")

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Earnings is a driver's completed-ride total over a period.
type Earnings struct {
	DriverID types.ID    `json:"driver_id"`
	Period   Period      `json:"period"`
	Total    types.Money `json:"total"`
	Rides    int         `json:"rides"`
}

// Snapshot is the admin dispatch board.
type Snapshot struct {
	Pending  []*ride.Ride     `json:"pending"`
	Active   []*ride.Ride     `json:"active"`
	Drivers  []*fleet.Driver  `json:"drivers"`
	Vehicles []*fleet.Vehicle `json:"vehicles"`
}

type Service struct {
	rides ride.Store
	fleet fleet.Store
	now   func() time.Time
}

func NewService(rides ride.Store, fl fleet.Store) *Service {
	return &Service{rides: rides, fleet: fl, now: time.Now}
}

// PendingQueue returns unassigned rides oldest first, so drivers see the
// longest-waiting request on top.
func (s *Service) PendingQueue(ctx context.Context) ([]*ride.Ride, error) {
	return s.rides.ListByStatus(ctx, ride.StatusPending)
}

func (s *Service) ActiveRides(ctx context.Context) ([]*ride.Ride, error) {
	return s.rides.ListActive(ctx)
}

// DriverEarnings sums the final prices of the driver's completed rides in
// the period. Weeks start on Monday.
func (s *Service) DriverEarnings(ctx context.Context, driverID types.ID, period Period) (*Earnings, error) {
	since, err := s.periodStart(period)
	if err != nil {
		return nil, err
	}
	rides, err := s.rides.CompletedByDriver(ctx, driverID, since)
	if err != nil {
		return nil, err
	}
	total := types.Money{Currency: "CHF"}
	for _, r := range rides {
		total.Amount += r.Price.Amount
	}
	return &Earnings{DriverID: driverID, Period: period, Total: total, Rides: len(rides)}, nil
}

// Calendar groups rides in [from, to) by day of their scheduled time,
// falling back to creation time for on-demand bookings.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) (map[string][]*ride.Ride, error) {
	rides, err := s.rides.ListWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*ride.Ride)
	for _, r := range rides {
		at := r.CreatedAt
		if r.ScheduledAt != nil {
			at = *r.ScheduledAt
		}
		day := at.Format("2006-01-02")
		out[day] = append(out[day], r)
	}
	return out, nil
}

// Board assembles the full dispatch snapshot for the admin console.
func (s *Service) Board(ctx context.Context) (*Snapshot, error) {
	pending, err := s.rides.ListByStatus(ctx, ride.StatusPending)
	if err != nil {
		return nil, err
	}
	active, err := s.rides.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := s.fleet.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Pending: pending, Active: active, Drivers: drivers, Vehicles: vehicles}, nil
}

func (s *Service) periodStart(p Period) (time.Time, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return midnight, nil
	case PeriodWeek:
		// Monday-based week
		offset := (int(now.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset), nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodAll:
		return time.Time{}, nil
	default:
		return time.Time{}, ErrBadPeriod
	}
}
