package ride

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"romuo/internal/types"
)

// Eight drivers race for one pending ride; the version guard must let
// exactly one through.
func TestAccept_ConcurrentDriversExactlyOneWins(t *testing.T) {
	svc, _, _ := newTestService()
	r := createPending(t, svc)
	ctx := context.Background()

	const drivers = 8
	var wg sync.WaitGroup
	errs := make([]error, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			driver := Actor{ID: types.ID(fmt.Sprintf("drv-%d", i)), Role: RoleDriver}
			_, errs[i] = svc.Accept(ctx, r.ID, driver)
		}(i)
	}
	wg.Wait()

	var wins, losers int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidState):
			losers++
		default:
			t.Fatalf("driver %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1 (losers = %d)", wins, losers)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusAssigned || got.StatusVersion != 1 {
		t.Fatalf("final state: status=%s version=%d", got.Status, got.StatusVersion)
	}
}

// rivalStore hands the ride to another driver between the service's
// snapshot read and its own swap, forcing the guarded update to miss.
type rivalStore struct {
	Store
	once sync.Once
}

func (s *rivalStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	s.once.Do(func() {
		rival := types.ID("drv-rival")
		_, _ = s.Store.UpdateStatus(ctx, id, from, StatusAssigned, version, &rival)
	})
	return s.Store.UpdateStatus(ctx, id, from, to, version, driverID)
}

// A swap lost after a passing snapshot reads the same as arriving late:
// the caller gets ErrInvalidState, not a distinct conflict class.
func TestAccept_LostSwapReportsInvalidState(t *testing.T) {
	fleet := &stubFleet{}
	svc := NewService(&rivalStore{Store: NewMemStore()}, stubQuoter{price: 42.50}, fleet, &recordingNotifier{}, nil)
	r := createPending(t, svc)
	ctx := context.Background()

	_, err := svc.Accept(ctx, r.ID, Actor{ID: "drv-late", Role: RoleDriver})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("lost swap: got %v, want ErrInvalidState", err)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DriverID == nil || *got.DriverID != "drv-rival" {
		t.Fatalf("driver binding: %v", got.DriverID)
	}
}

// An accept and a cancel race on the same pending ride: one must win the
// swap, the loser must fail as if the state had already moved, and the
// final status must match the winner.
func TestAcceptVersusCancel_OneWinner(t *testing.T) {
	svc, _, _ := newTestService()
	r := createPending(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	var acceptErr, cancelErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, acceptErr = svc.Accept(ctx, r.ID, Actor{ID: "drv-1", Role: RoleDriver})
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Cancel(ctx, r.ID, Actor{ID: "rider-1", Role: RolePassenger}, "")
	}()
	wg.Wait()

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}

	switch {
	case acceptErr == nil && cancelErr == nil:
		// cancel may legally follow a completed accept (assigned is
		// cancellable), in which case both succeed sequentially
		if got.Status != StatusCancelled {
			t.Fatalf("both succeeded but status = %s", got.Status)
		}
	case acceptErr == nil:
		if !errors.Is(cancelErr, ErrInvalidState) {
			t.Fatalf("cancel error = %v", cancelErr)
		}
		if got.Status != StatusAssigned {
			t.Fatalf("accept won but status = %s", got.Status)
		}
	case cancelErr == nil:
		if !errors.Is(acceptErr, ErrInvalidState) {
			t.Fatalf("accept error = %v", acceptErr)
		}
		if got.Status != StatusCancelled {
			t.Fatalf("cancel won but status = %s", got.Status)
		}
	default:
		t.Fatalf("both failed: accept=%v cancel=%v", acceptErr, cancelErr)
	}
}
