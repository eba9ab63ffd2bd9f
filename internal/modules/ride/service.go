package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"romuo/internal/maps"
	"romuo/internal/modules/pricing"
	"romuo/internal/types"
)

var (
	// ErrInvalidState is returned when the ride exists but the requested
	// transition cannot leave its current status.
	ErrInvalidState = errors.New("ride is not in a state allowing this transition")
	// ErrConflict is returned when the driver already holds an active ride.
	ErrConflict   = errors.New("driver engagement conflict")
	ErrForbidden  = errors.New("actor may not perform this transition")
	ErrBadRequest = errors.New("invalid ride request")
)

// Quoter resolves the price at booking time.
type Quoter interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.PriceBreakdown, error)
}

// Fleet is the narrow slice of the fleet module the lifecycle needs for
// its side effects.
type Fleet interface {
	MarkBusy(ctx context.Context, driverID types.ID) error
	Release(ctx context.Context, driverID types.ID) error
	TripCompleted(ctx context.Context, driverID types.ID) error
}

// Notifier receives lifecycle notifications. Implementations must not
// block; delivery is fire-and-forget and never fails a transition.
type Notifier interface {
	RideCreated(ctx context.Context, r *Ride)
	DriverAssigned(ctx context.Context, r *Ride)
	RideCancelled(ctx context.Context, r *Ride)
}

// Router estimates distance and duration when the booking omits them;
// nil means the caller's figures are taken as-is.
type Router interface {
	Estimate(ctx context.Context, origin, destination types.Point) (*maps.TravelEstimate, error)
}

// CreateCommand carries a booking request. AccountType decides billing:
// business accounts are invoiced monthly, everyone else pays per ride.
type CreateCommand struct {
	RequesterID     types.ID
	AccountType     string
	Guest           *GuestContact
	Pickup          types.Point
	PickupAddr      string
	Destination     types.Point
	DestinationAddr string
	VehicleClassID  string
	Passengers      int
	DistanceKm      float64
	DurationMin     *float64
	PaymentMethod   PaymentMethod
	RiderAge        *int
	RideSharing     bool
	ScheduledAt     *time.Time
	Notes           string
}

// Service drives the ride lifecycle. Every transition is a CAS against the
// store plus an audit event; fleet and notification side effects happen
// only after the swap is confirmed.
type Service struct {
	store  Store
	pricer Quoter
	fleet  Fleet
	notify Notifier
	router Router
	log    *zap.Logger
}

func NewService(store Store, pricer Quoter, fleet Fleet, notify Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pricer: pricer, fleet: fleet, notify: notify, log: log}
}

// WithRouter enables distance estimation for bookings that come without
// their own figures.
func (s *Service) WithRouter(r Router) *Service {
	s.router = r
	return s
}

var validPayments = map[PaymentMethod]bool{
	PayCard: true, PayCash: true, PayInvoice: true, PayTwint: true,
}

// Create books a ride: it prices the trip, fixes the billing type from the
// requester's account and persists the ride in pending.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.RequesterID == "" {
		return nil, fmt.Errorf("%w: requester required", ErrBadRequest)
	}
	if !validPayments[cmd.PaymentMethod] {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrBadRequest, cmd.PaymentMethod)
	}
	if cmd.ScheduledAt != nil && cmd.ScheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time is in the past", ErrBadRequest)
	}

	if cmd.DistanceKm <= 0 && s.router != nil {
		est, err := s.router.Estimate(ctx, cmd.Pickup, cmd.Destination)
		if err != nil {
			return nil, fmt.Errorf("%w: distance missing and route estimate failed", ErrBadRequest)
		}
		cmd.DistanceKm = est.DistanceKm
		if cmd.DurationMin == nil {
			cmd.DurationMin = &est.DurationMin
		}
	}

	quote, err := s.pricer.Quote(ctx, pricing.QuoteRequest{
		VehicleClassID: cmd.VehicleClassID,
		Pickup:         &cmd.Pickup,
		Destination:    &cmd.Destination,
		DistanceKm:     cmd.DistanceKm,
		DurationMin:    cmd.DurationMin,
		Passengers:     cmd.Passengers,
		RiderAge:       cmd.RiderAge,
		RideSharing:    cmd.RideSharing,
		ScheduledAt:    cmd.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	billing := BillingImmediate
	if cmd.AccountType == "business" {
		billing = BillingMonthly
	}

	r := &Ride{
		ID:              types.ID(ulid.Make().String()),
		RequesterID:     cmd.RequesterID,
		Guest:           cmd.Guest,
		Pickup:          cmd.Pickup,
		PickupAddr:      cmd.PickupAddr,
		Destination:     cmd.Destination,
		DestinationAddr: cmd.DestinationAddr,
		VehicleClassID:  cmd.VehicleClassID,
		Passengers:      cmd.Passengers,
		DistanceKm:      quote.DistanceKm,
		DurationMin:     quote.DurationMin,
		Price:           types.MoneyFromCHF(quote.FinalPrice),
		PricingMethod:   quote.Method,
		ZoneID:          quote.ZoneID,
		PaymentMethod:   cmd.PaymentMethod,
		BillingType:     billing,
		Status:          StatusPending,
		ScheduledAt:     cmd.ScheduledAt,
		Notes:           cmd.Notes,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.audit(ctx, &Event{
		RideID: r.ID, Kind: EventCreated,
		ActorID: cmd.RequesterID, ActorRole: string(RolePassenger),
		To: StatusPending,
	})
	if s.notify != nil {
		s.notify.RideCreated(ctx, r)
	}
	return r, nil
}

// Accept lets a driver claim a pending ride. A driver with an active ride
// is refused; concurrent accepts race on the CAS and exactly one wins.
func (s *Service) Accept(ctx context.Context, rideID types.ID, driver Actor) (*Ride, error) {
	if driver.Role != RoleDriver {
		return nil, ErrForbidden
	}
	if _, err := s.store.ActiveByDriver(ctx, driver.ID); err == nil {
		return nil, fmt.Errorf("%w: driver already has an active ride", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.transition(ctx, rideID, TransitionAccept, driver, &driver.ID, "")
}

// AdminAssign force-binds a driver to a pending ride. Unlike Accept it
// skips the one-active-ride check and marks the pair busy immediately.
func (s *Service) AdminAssign(ctx context.Context, rideID, driverID types.ID, admin Actor) (*Ride, error) {
	r, err := s.transition(ctx, rideID, TransitionAdminAssign, admin, &driverID, "")
	if err != nil {
		return nil, err
	}
	if s.fleet != nil {
		if err := s.fleet.MarkBusy(ctx, driverID); err != nil {
			s.log.Warn("mark busy after assign failed", zap.String("driver_id", string(driverID)), zap.Error(err))
		}
	}
	return r, nil
}

func (s *Service) EnRoute(ctx context.Context, rideID types.ID, driver Actor) (*Ride, error) {
	return s.transition(ctx, rideID, TransitionEnRoute, driver, nil, "")
}

func (s *Service) Arrived(ctx context.Context, rideID types.ID, driver Actor) (*Ride, error) {
	return s.transition(ctx, rideID, TransitionArrived, driver, nil, "")
}

func (s *Service) Start(ctx context.Context, rideID types.ID, driver Actor) (*Ride, error) {
	return s.transition(ctx, rideID, TransitionStart, driver, nil, "")
}

// Complete finishes the ride and returns the driver to the pool with the
// trip counted.
func (s *Service) Complete(ctx context.Context, rideID types.ID, driver Actor) (*Ride, error) {
	r, err := s.transition(ctx, rideID, TransitionComplete, driver, nil, "")
	if err != nil {
		return nil, err
	}
	if s.fleet != nil && r.DriverID != nil {
		if err := s.fleet.TripCompleted(ctx, *r.DriverID); err != nil {
			s.log.Warn("release after complete failed", zap.String("driver_id", string(*r.DriverID)), zap.Error(err))
		}
	}
	return r, nil
}

// Cancel aborts a ride before pickup. Allowed from pending, assigned and
// driver_en_route only.
func (s *Service) Cancel(ctx context.Context, rideID types.ID, actor Actor, reason string) (*Ride, error) {
	r, err := s.transition(ctx, rideID, TransitionCancel, actor, nil, reason)
	if err != nil {
		return nil, err
	}
	if s.fleet != nil && r.DriverID != nil {
		if err := s.fleet.Release(ctx, *r.DriverID); err != nil {
			s.log.Warn("release after cancel failed", zap.String("driver_id", string(*r.DriverID)), zap.Error(err))
		}
	}
	if s.notify != nil {
		s.notify.RideCancelled(ctx, r)
	}
	return r, nil
}

// Decline records a driver's refusal without touching the ride; it stays
// pending and visible to other drivers.
func (s *Service) Decline(ctx context.Context, rideID types.ID, driver Actor, reason string) error {
	if driver.Role != RoleDriver {
		return ErrForbidden
	}
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return err
	}
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	s.audit(ctx, &Event{
		RideID: rideID, Kind: TransitionDecline,
		ActorID: driver.ID, ActorRole: string(driver.Role),
		From: StatusPending, To: StatusPending, Note: reason,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) History(ctx context.Context, id types.ID) ([]*Event, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Events(ctx, id)
}

func (s *Service) ByRequester(ctx context.Context, requesterID types.ID) ([]*Ride, error) {
	return s.store.ListByRequester(ctx, requesterID)
}

// transition runs one rule end to end: load, authorize, CAS, audit. The
// loaded snapshot decides ErrInvalidState and ErrForbidden; a failed swap
// after a passing snapshot means somebody else moved first, and the loser
// sees the same ErrInvalidState as if it had read the new status itself.
func (s *Service) transition(ctx context.Context, rideID types.ID, kind string, actor Actor, driverID *types.ID, note string) (*Ride, error) {
	rl, ok := rules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown transition %q", ErrBadRequest, kind)
	}
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rl.leavesFrom(r.Status) {
		return nil, ErrInvalidState
	}
	if !rl.allowed(r, actor) {
		return nil, ErrForbidden
	}

	swapped, err := s.store.UpdateStatus(ctx, rideID, r.Status, rl.to, r.StatusVersion, driverID)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: lost the status swap", ErrInvalidState)
	}

	s.audit(ctx, &Event{
		RideID: rideID, Kind: kind,
		ActorID: actor.ID, ActorRole: string(actor.Role),
		From: r.Status, To: rl.to, Note: note,
	})

	updated, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if kind == TransitionAccept || kind == TransitionAdminAssign {
		if s.notify != nil {
			s.notify.DriverAssigned(ctx, updated)
		}
	}
	return updated, nil
}

// audit never fails the caller; a lost event is logged and tolerated.
func (s *Service) audit(ctx context.Context, e *Event) {
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.Error("append ride event failed",
			zap.String("ride_id", string(e.RideID)),
			zap.String("kind", e.Kind),
			zap.Error(err))
	}
}
