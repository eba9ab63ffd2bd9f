package fleet

import (
	"context"
	"testing"
	"time"

	"romuo/internal/types"
)

type classSet map[string]bool

func (c classSet) Known(id string) bool { return c[id] }

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemStore(), nil, classSet{"eco": true, "van": true}, nil)
}

func TestRegisterVehicle_DuplicatePlate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	ins := time.Now().AddDate(1, 0, 0)
	due := time.Now().AddDate(0, 6, 0)
	if _, err := s.RegisterVehicle(ctx, "GE 123456", "eco", 4, ins, due); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := s.RegisterVehicle(ctx, "GE 123456", "van", 7, ins, due); err != ErrDuplicatePlate {
		t.Fatalf("got %v, want ErrDuplicatePlate", err)
	}
}

func TestRegisterVehicle_UnknownClass(t *testing.T) {
	s := newTestService(t)
	_, err := s.RegisterVehicle(context.Background(), "VD 99", "limo", 4, time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error for unknown class")
	}
}

func TestRecordPing_OfflineDriverRejected(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, err := s.RegisterDriver(ctx, "idn-1", "Luca")
	if err != nil {
		t.Fatal(err)
	}
	// Drivers register offline; pings must be rejected until they go online.
	if err := s.RecordPing(ctx, d.ID, types.Point{Lat: 46.2, Lng: 6.14}); err != ErrDriverOffline {
		t.Fatalf("got %v, want ErrDriverOffline", err)
	}

	if err := s.SetDriverStatus(ctx, d.ID, DriverAvailable); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordPing(ctx, d.ID, types.Point{Lat: 46.2, Lng: 6.14}); err != nil {
		t.Fatalf("ping after going online: %v", err)
	}
	got, _ := s.Driver(ctx, d.ID)
	if got.Location == nil || got.Location.Lat != 46.2 {
		t.Fatalf("location not stored: %+v", got.Location)
	}
}

func TestMarkBusyAndRelease_FlipVehicle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, _ := s.RegisterDriver(ctx, "idn-2", "Mia")
	v, _ := s.RegisterVehicle(ctx, "ZH 555", "eco", 4, time.Now(), time.Now())
	if err := s.AssignVehicle(ctx, d.ID, v.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkBusy(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	gd, _ := s.Driver(ctx, d.ID)
	gv, _ := s.Vehicle(ctx, v.ID)
	if gd.Status != DriverBusy || gv.Status != VehicleInUse {
		t.Fatalf("after MarkBusy: driver=%s vehicle=%s", gd.Status, gv.Status)
	}

	if err := s.Release(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	gd, _ = s.Driver(ctx, d.ID)
	gv, _ = s.Vehicle(ctx, v.ID)
	if gd.Status != DriverAvailable || gv.Status != VehicleAvailable {
		t.Fatalf("after Release: driver=%s vehicle=%s", gd.Status, gv.Status)
	}
}

func TestTripCompleted_IncrementsAndReleases(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, _ := s.RegisterDriver(ctx, "idn-3", "Noa")
	_ = s.MarkBusy(ctx, d.ID)
	if err := s.TripCompleted(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Driver(ctx, d.ID)
	if got.Trips != 1 {
		t.Fatalf("trips = %d, want 1", got.Trips)
	}
	if got.Status != DriverAvailable {
		t.Fatalf("status = %s, want available", got.Status)
	}
}

func TestNearbyDrivers_FallbackScanFiltersAvailability(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a, _ := s.RegisterDriver(ctx, "idn-a", "A")
	b, _ := s.RegisterDriver(ctx, "idn-b", "B")
	_ = s.SetDriverStatus(ctx, a.ID, DriverAvailable)
	_ = s.SetDriverStatus(ctx, b.ID, DriverAvailable)
	_ = s.RecordPing(ctx, a.ID, types.Point{Lat: 46.20, Lng: 6.14})
	_ = s.RecordPing(ctx, b.ID, types.Point{Lat: 46.21, Lng: 6.15})
	_ = s.SetDriverStatus(ctx, b.ID, DriverBusy)

	got, err := s.NearbyDrivers(ctx, types.Point{Lat: 46.2, Lng: 6.14}, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("got %d drivers, want only the available one", len(got))
	}
}

func TestDriverByIdentity(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	d, _ := s.RegisterDriver(ctx, "firebase-uid-7", "Sam")
	got, err := s.DriverByIdentity(ctx, "firebase-uid-7")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != d.ID {
		t.Fatalf("got %s, want %s", got.ID, d.ID)
	}
	if _, err := s.DriverByIdentity(ctx, "unknown"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
