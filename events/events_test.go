package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"casinobot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		GuildID:         789,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: entities.TransactionTypeBlackjackPayout,
		ChangeAmount:    500,
	}

	require.NoError(t, transactionalBus.Publish(testEvent))
	assert.Equal(t, 1, transactionalBus.Pending())

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventsReceived <- balanceEvent
		}
	})

	for _, userID := range []int64{1, 2, 3} {
		_ = transactionalBus.Publish(BalanceChangeEvent{UserID: userID, GuildID: 100, ChangeAmount: 100 * userID})
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	userIDs := make(map[int64]bool)
	for received := range eventsReceived {
		userIDs[received.UserID] = true
	}
	assert.Len(t, userIDs, 3)
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	_ = transactionalBus.Publish(BalanceChangeEvent{UserID: 1, GuildID: 2, ChangeAmount: 5})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPublisher) Publish(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return errors.New("broker down")
}

func TestTransactionalBusFlushContinuesPastFailures(t *testing.T) {
	real := &failingPublisher{}
	bus := NewTransactionalBus(real)

	_ = bus.Publish(PayoutShortfallEvent{SessionID: "a"})
	_ = bus.Publish(BlackjackSessionCancelledEvent{SessionID: "a"})

	require.NoError(t, bus.Flush(context.Background()))
	assert.Equal(t, 2, real.calls)
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeBlackjackRoundEnded, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeBlackjackRoundEnded, func(ctx context.Context, event Event) {
		close(done)
	})

	require.NoError(t, bus.Publish(BlackjackRoundEndedEvent{SessionID: "s"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran")
	}
}
