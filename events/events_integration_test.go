package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan DonationRecordedEvent, 1)
	mainBus.Subscribe(EventTypeDonationRecorded, func(ctx context.Context, event Event) {
		if donationEvent, ok := event.(DonationRecordedEvent); ok {
			eventReceived <- donationEvent
		} else {
			t.Errorf("Expected DonationRecordedEvent, got %T", event)
		}
	})

	testEvent := DonationRecordedEvent{
		DonationID: 7,
		DreamID:    3,
		DonorID:    11,
		FromWallet: "0xabc",
		Amount:     decimal.RequireFromString("12.5"),
		Currency:   "USDC",
		TxHash:     "0xdeadbeef",
		StarsAdded: 1,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	err := transactionalBus.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.DonationID, received.DonationID)
		assert.Equal(t, testEvent.TxHash, received.TxHash)
		assert.True(t, testEvent.Amount.Equal(received.Amount))
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	received := make([]EventType, 0, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		received = append(received, event.Type())
		mu.Unlock()
	})

	transactionalBus.Publish(DonationRecordedEvent{DonationID: 1})
	transactionalBus.Publish(ChancesAwardedEvent{UserID: 2, ChancesAwarded: 1})
	transactionalBus.Publish(DreamCompletedEvent{DreamID: 3})

	require.NoError(t, transactionalBus.Flush(context.Background()))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not all events were delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []EventType{EventTypeDonationRecorded, EventTypeChancesAwarded, EventTypeDreamCompleted}, received)
}

// TestDiscardDropsPendingEvents verifies that rolled back work never reaches subscribers
func TestDiscardDropsPendingEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypeDreamCompleted, func(ctx context.Context, event Event) {
		delivered <- event
	})

	transactionalBus.Publish(DreamCompletedEvent{DreamID: 9})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case ev := <-delivered:
		t.Fatalf("unexpected event delivered after discard: %v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestPanickingHandlerDoesNotAffectOthers ensures a handler panic is contained
func TestPanickingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeRatingUpdated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRatingUpdated, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), RatingUpdatedEvent{UserID: 1, OldRating: 0, NewRating: 5})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler did not receive the event")
	}
}
