package infrastructure

import (
	"context"
	"time"

	"dreamchain/events"

	log "github.com/sirupsen/logrus"
)

const forwardTimeout = 5 * time.Second

// EventForwarder relays committed domain events from the in-process bus to NATS
type EventForwarder struct {
	publisher *NATSEventPublisher
}

// NewEventForwarder creates a forwarder for the given publisher
func NewEventForwarder(publisher *NATSEventPublisher) *EventForwarder {
	return &EventForwarder{publisher: publisher}
}

// Register subscribes the forwarder to every event type on the bus
func (f *EventForwarder) Register(bus *events.Bus) {
	bus.SubscribeAll(f.handle)
	log.Info("Registered NATS event forwarder")
}

func (f *EventForwarder) handle(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	if err := f.publisher.Publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}
