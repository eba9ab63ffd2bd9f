// Package ride implements the booking lifecycle: a guarded state machine
// over persisted rides with an append-only event trail.
package ride

import (
	"time"

	"romuo/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusEnRoute    Status = "driver_en_route"
	StatusArrived    Status = "arrived"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Active reports whether the ride still occupies a driver slot.
func (s Status) Active() bool {
	switch s {
	case StatusAssigned, StatusEnRoute, StatusArrived, StatusInProgress:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type BillingType string

const (
	BillingImmediate BillingType = "immediate"
	BillingMonthly   BillingType = "monthly"
)

type PaymentMethod string

const (
	PayCard    PaymentMethod = "card"
	PayCash    PaymentMethod = "cash"
	PayInvoice PaymentMethod = "invoice"
	PayTwint   PaymentMethod = "twint"
)

// GuestContact identifies a rider booked on someone else's behalf.
type GuestContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Ride struct {
	ID              types.ID      `json:"id"`
	RequesterID     types.ID      `json:"requester_id"`
	Guest           *GuestContact `json:"guest,omitempty"`
	DriverID        *types.ID     `json:"driver_id,omitempty"`
	Pickup          types.Point   `json:"pickup"`
	PickupAddr      string        `json:"pickup_address"`
	Destination     types.Point   `json:"destination"`
	DestinationAddr string        `json:"destination_address"`
	VehicleClassID  string        `json:"vehicle_class_id"`
	Passengers      int           `json:"passengers"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMin     float64       `json:"duration_min"`
	Price           types.Money   `json:"price"`
	PricingMethod   string        `json:"pricing_method"`
	ZoneID          types.ID      `json:"zone_id,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	BillingType     BillingType   `json:"billing_type"`
	Status          Status        `json:"status"`
	StatusVersion   int           `json:"status_version"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	AssignedAt      *time.Time    `json:"assigned_at,omitempty"`
	PickedUpAt      *time.Time    `json:"picked_up_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
}

// Event is one append-only audit row. Declines are recorded here without
// changing the ride itself.
type Event struct {
	ID        int64     `json:"id"`
	RideID    types.ID  `json:"ride_id"`
	Kind      string    `json:"kind"`
	ActorID   types.ID  `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	From      Status    `json:"from,omitempty"`
	To        Status    `json:"to,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition kinds, also used as event kinds.
const (
	TransitionAccept      = "accept"
	TransitionAdminAssign = "admin_assign"
	TransitionEnRoute     = "en_route"
	TransitionArrived     = "arrived"
	TransitionStart       = "start"
	TransitionComplete    = "complete"
	TransitionCancel      = "cancel"
	TransitionDecline     = "decline"
	EventCreated          = "created"
)

// Role is the acting capability for a transition. It mirrors the identity
// roles but stays local so the state machine has no auth dependency.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

// Actor is who attempts a transition.
type Actor struct {
	ID   types.ID
	Role Role
}

// rule describes one transition: which statuses it may leave from, where it
// lands, and who may trigger it.
type rule struct {
	from []Status
	to   Status
	// allowed reports whether the actor may drive this transition on r.
	allowed func(r *Ride, a Actor) bool
}

func boundDriver(r *Ride, a Actor) bool {
	return a.Role == RoleDriver && r.DriverID != nil && *r.DriverID == a.ID
}

var rules = map[string]rule{
	TransitionAccept: {
		from:    []Status{StatusPending},
		to:      StatusAssigned,
		allowed: func(_ *Ride, a Actor) bool { return a.Role == RoleDriver },
	},
	TransitionAdminAssign: {
		from:    []Status{StatusPending},
		to:      StatusAssigned,
		allowed: func(_ *Ride, a Actor) bool { return a.Role == RoleAdmin },
	},
	TransitionEnRoute: {
		from:    []Status{StatusAssigned},
		to:      StatusEnRoute,
		allowed: boundDriver,
	},
	TransitionArrived: {
		from:    []Status{StatusEnRoute},
		to:      StatusArrived,
		allowed: boundDriver,
	},
	TransitionStart: {
		from:    []Status{StatusAssigned, StatusEnRoute, StatusArrived},
		to:      StatusInProgress,
		allowed: boundDriver,
	},
	TransitionComplete: {
		from:    []Status{StatusAssigned, StatusEnRoute, StatusArrived, StatusInProgress},
		to:      StatusCompleted,
		allowed: boundDriver,
	},
	TransitionCancel: {
		from: []Status{StatusPending, StatusAssigned, StatusEnRoute},
		to:   StatusCancelled,
		allowed: func(r *Ride, a Actor) bool {
			return a.Role == RoleAdmin || (a.Role == RolePassenger && r.RequesterID == a.ID)
		},
	},
}

func (r rule) leavesFrom(s Status) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}
