package notify

import (
	"context"

	"go.uber.org/zap"

	"romuo/internal/modules/ride"
)

type message struct {
	kind string
	ride *ride.Ride
}

// Dispatcher queues notifications on a buffered channel and delivers them
// from a single worker. Enqueue never blocks; overflow is dropped and
// logged so a slow sink cannot back-pressure the booking path.
type Dispatcher struct {
	sink Sink
	ch   chan message
	log  *zap.Logger
}

func NewDispatcher(sink Sink, buffer int, log *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sink: sink, ch: make(chan message, buffer), log: log}
}

// Run drains the queue until ctx is cancelled. Call it once, in its own
// goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-d.ch:
			if err := d.sink.Deliver(ctx, m.kind, m.ride); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("kind", m.kind),
					zap.String("ride_id", string(m.ride.ID)),
					zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) RideCreated(_ context.Context, r *ride.Ride)    { d.enqueue(KindRideCreated, r) }
func (d *Dispatcher) DriverAssigned(_ context.Context, r *ride.Ride) { d.enqueue(KindDriverAssigned, r) }
func (d *Dispatcher) RideCancelled(_ context.Context, r *ride.Ride)  { d.enqueue(KindRideCancelled, r) }

func (d *Dispatcher) enqueue(kind string, r *ride.Ride) {
	select {
	case d.ch <- message{kind: kind, ride: r}:
	default:
		d.log.Warn("notification queue full, dropping",
			zap.String("kind", kind),
			zap.String("ride_id", string(r.ID)))
	}
}
