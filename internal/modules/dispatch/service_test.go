package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"romuo/internal/modules/fleet"
	"romuo/internal/modules/ride"
	"romuo/internal/types"
)

func seedRide(t *testing.T, store *ride.MemStore, id types.ID, status ride.Status, mutate func(*ride.Ride)) {
	t.Helper()
	r := &ride.Ride{
		ID:          id,
		RequesterID: "rider-1",
		Status:      status,
		Price:       types.MoneyFromCHF(40),
		CreatedAt:   time.Now().UTC(),
	}
	if mutate != nil {
		mutate(r)
	}
	if err := store.Create(context.Background(), r); err != nil {
		t.Fatal(err)
	}
}

func TestPendingQueue_OldestFirst(t *testing.T) {
	rides := ride.NewMemStore()
	base := time.Now().UTC()
	seedRide(t, rides, "r-old", ride.StatusPending, func(r *ride.Ride) { r.CreatedAt = base.Add(-2 * time.Hour) })
	seedRide(t, rides, "r-new", ride.StatusPending, func(r *ride.Ride) { r.CreatedAt = base.Add(-time.Hour) })
	seedRide(t, rides, "r-done", ride.StatusCompleted, nil)

	svc := NewService(rides, fleet.NewMemStore())
	got, err := svc.PendingQueue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("pending = %d, want 2", len(got))
	}
	if got[0].ID != "r-old" || got[1].ID != "r-new" {
		t.Fatalf("order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestDriverEarnings_Periods(t *testing.T) {
	rides := ride.NewMemStore()
	drv := types.ID("drv-1")
	now := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC) // Wednesday

	completed := func(id types.ID, chf float64, at time.Time) {
		seedRide(t, rides, id, ride.StatusCompleted, func(r *ride.Ride) {
			r.DriverID = &drv
			r.Price = types.MoneyFromCHF(chf)
			r.CompletedAt = &at
		})
	}
	completed("r-today", 30, now.Add(-2*time.Hour))
	completed("r-monday", 20, now.AddDate(0, 0, -2))  // same week
	completed("r-lastweek", 50, now.AddDate(0, 0, -7))
	completed("r-lastmonth", 80, now.AddDate(0, -2, 0))

	svc := NewService(rides, fleet.NewMemStore())
	svc.now = func() time.Time { return now }

	cases := []struct {
		period Period
		chf    float64
		rides  int
	}{
		{PeriodToday, 30, 1},
		{PeriodWeek, 50, 2},
		{PeriodMonth, 100, 3},
		{PeriodAll, 180, 4},
	}
	for _, tc := range cases {
		got, err := svc.DriverEarnings(context.Background(), drv, tc.period)
		if err != nil {
			t.Fatalf("%s: %v", tc.period, err)
		}
		if got.Total.CHF() != tc.chf || got.Rides != tc.rides {
			t.Fatalf("%s: total=%.2f rides=%d, want %.2f/%d", tc.period, got.Total.CHF(), got.Rides, tc.chf, tc.rides)
		}
	}

	if _, err := svc.DriverEarnings(context.Background(), drv, "quarter"); !errors.Is(err, ErrBadPeriod) {
		t.Fatalf("got %v, want ErrBadPeriod", err)
	}
}

func TestCalendar_GroupsByScheduledDay(t *testing.T) {
	rides := ride.NewMemStore()
	day1 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 2, 18, 30, 0, 0, time.UTC)

	seedRide(t, rides, "r-s1", ride.StatusPending, func(r *ride.Ride) { r.ScheduledAt = &day1 })
	seedRide(t, rides, "r-s2", ride.StatusPending, func(r *ride.Ride) { r.ScheduledAt = &day2 })
	seedRide(t, rides, "r-ondemand", ride.StatusPending, func(r *ride.Ride) { r.CreatedAt = day1.Add(time.Hour) })

	svc := NewService(rides, fleet.NewMemStore())
	got, err := svc.Calendar(context.Background(), day1.AddDate(0, 0, -1), day2.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(got["2026-09-01"]) != 2 {
		t.Fatalf("day1 rides = %d, want 2 (scheduled + on-demand)", len(got["2026-09-01"]))
	}
	if len(got["2026-09-02"]) != 1 {
		t.Fatalf("day2 rides = %d, want 1", len(got["2026-09-02"]))
	}
}

func TestBoard_CombinesRidesAndFleet(t *testing.T) {
	rides := ride.NewMemStore()
	fl := fleet.NewMemStore()
	seedRide(t, rides, "r-p", ride.StatusPending, nil)
	seedRide(t, rides, "r-a", ride.StatusAssigned, nil)
	if err := fl.CreateDriver(context.Background(), &fleet.Driver{ID: "drv-1", Status: fleet.DriverAvailable}); err != nil {
		t.Fatal(err)
	}

	svc := NewService(rides, fl)
	got, err := svc.Board(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Pending) != 1 || len(got.Active) != 1 || len(got.Drivers) != 1 {
		t.Fatalf("board: pending=%d active=%d drivers=%d", len(got.Pending), len(got.Active), len(got.Drivers))
	}
}
