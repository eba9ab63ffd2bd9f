// Package notify delivers ride lifecycle notifications off the request
// path. Delivery is best-effort: a full queue drops the message rather
// than stalling a booking.
package notify

import (
	"context"

	"go.uber.org/zap"

	"romuo/internal/modules/ride"
)

// Event kinds carried through the dispatcher.
const (
	KindRideCreated    = "ride_created"
	KindDriverAssigned = "driver_assigned"
	KindRideCancelled  = "ride_cancelled"
)

// Sink is the delivery backend: push gateway, SMS bridge, whatever the
// deployment wires in.
type Sink interface {
	Deliver(ctx context.Context, kind string, r *ride.Ride) error
}

// LogSink writes notifications to the structured log. It is the default
// backend and the development stand-in for real channels.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, kind string, r *ride.Ride) error {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.String("ride_id", string(r.ID)),
		zap.String("status", string(r.Status)),
		zap.String("requester_id", string(r.RequesterID)),
	}
	if r.DriverID != nil {
		fields = append(fields, zap.String("driver_id", string(*r.DriverID)))
	}
	s.log.Info("ride notification", fields...)
	return nil
}
