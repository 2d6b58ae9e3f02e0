package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Handler reacts to a single event. Handlers run on their own goroutine and
// must not assume the emitting request is still alive.
type Handler func(ctx context.Context, event Event)

// Bus fans events out to in-process subscribers such as metrics, the stats
// cache and the NATS forwarder.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	count := len(b.handlers[eventType])
	b.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": count,
	}).Debug("Subscribed event handler")
}

// SubscribeAll registers handler for every type in AllEventTypes.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

func (b *Bus) subscribers(eventType EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[eventType]...)
}

// Emit dispatches event to its subscribers without waiting for them.
func (b *Bus) Emit(ctx context.Context, event Event) {
	handlers := b.subscribers(event.Type())
	if len(handlers) == 0 {
		return
	}

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Dispatching event")

	for i, h := range handlers {
		go runHandler(ctx, h, i, event)
	}
}

func runHandler(ctx context.Context, h Handler, index int, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": index,
				"panic":        r,
			}).Error("Event handler panicked")
		}
	}()
	h(ctx, event)
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits. A rollback discards them, so subscribers never see
// a donation or completion that was not persisted.
type TransactionalBus struct {
	bus     *Bus
	pending []Event
}

func NewTransactionalBus(bus *Bus) *TransactionalBus {
	return &TransactionalBus{bus: bus}
}

// Publish queues e for the next Flush.
func (t *TransactionalBus) Publish(e Event) {
	t.pending = append(t.pending, e)
}

// Pending reports how many events are queued.
func (t *TransactionalBus) Pending() int {
	return len(t.pending)
}

// Flush emits queued events in the order they were published. It is called
// after commit; handlers get a context detached from the request's cancellation.
func (t *TransactionalBus) Flush(ctx context.Context) error {
	if len(t.pending) == 0 {
		return nil
	}

	log.WithField("pendingEventCount", len(t.pending)).Debug("Flushing committed events")

	detached := context.WithoutCancel(ctx)
	for _, ev := range t.pending {
		t.bus.Emit(detached, ev)
	}
	t.pending = nil
	return nil
}

// Discard drops queued events after a rollback.
func (t *TransactionalBus) Discard() {
	t.pending = nil
}
