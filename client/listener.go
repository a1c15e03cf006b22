package client

import (
	"context"
	"time"
)

// RingEvent is the ring notification as the app consumes it. It carries the
// same data-only fields the server pushes, with the unix timestamp already
// converted.
type RingEvent struct {
	ApartmentID string
	Address     string
	Timestamp   time.Time
}

// RingSource delivers ring events to the app, e.g. the websocket feed. The
// returned channel closes when the source stops, whether from ctx
// cancellation or a connection failure.
type RingSource interface {
	Subscribe(ctx context.Context) (<-chan RingEvent, error)
}

// Run pumps ring events from the source into the re-arm timer until the
// context is cancelled or the source closes its channel. Delivery failures
// never disarm anything; a countdown only ends by expiry or explicit Disarm.
func Run(ctx context.Context, src RingSource, timer *ReArmTimer) error {
	events, err := src.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			timer.Arm(ev.ApartmentID)
		}
	}
}
