package events

import (
	"context"
	"sync"

	"casinobot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange             EventType = "balance_change"
	EventTypeBlackjackRoundEnded       EventType = "blackjack_round_ended"
	EventTypeBlackjackSessionCancelled EventType = "blackjack_session_cancelled"
	EventTypePayoutShortfall           EventType = "payout_shortfall"
)

// AllEventTypes lists every event the casino publishes
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeBlackjackRoundEnded,
	EventTypeBlackjackSessionCancelled,
	EventTypePayoutShortfall,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred. UserID is
// zero for guild bank changes.
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	GuildID         int64                    `json:"guild_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BlackjackRoundEndedEvent carries the settled results of a round
type BlackjackRoundEndedEvent struct {
	SessionID string                 `json:"session_id"`
	Scope     entities.TableScope    `json:"scope"`
	Results   *entities.RoundResults `json:"results"`
}

func (e BlackjackRoundEndedEvent) Type() EventType {
	return EventTypeBlackjackRoundEnded
}

// BlackjackSessionCancelledEvent is emitted when a lobby closes without playing
type BlackjackSessionCancelledEvent struct {
	SessionID     string              `json:"session_id"`
	Scope         entities.TableScope `json:"scope"`
	HostUserID    int64               `json:"host_user_id"`
	Reason        string              `json:"reason"`
	RefundedUsers []int64             `json:"refunded_users"`
}

func (e BlackjackSessionCancelledEvent) Type() EventType {
	return EventTypeBlackjackSessionCancelled
}

// PayoutShortfallEvent flags a hand the bank could not settle
type PayoutShortfallEvent struct {
	SessionID string `json:"session_id"`
	GuildID   int64  `json:"guild_id"`
	UserID    int64  `json:"user_id"`
	HandIndex int    `json:"hand_index"`
	Owed      int64  `json:"owed"`
	Paid      int64  `json:"paid"`
	Note      string `json:"note"`
}

func (e PayoutShortfallEvent) Type() EventType {
	return EventTypePayoutShortfall
}

// Publisher is anything events can be handed to
type Publisher interface {
	Publish(event Event) error
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Publish emits the event on a background context
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow renderer never blocks a table
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// forwards them to the real publisher once the transaction commits.
type TransactionalBus struct {
	real    Publisher
	pending []Event
}

func NewTransactionalBus(real Publisher) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of events waiting for a flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus")

	for _, ev := range b.pending {
		if err := b.real.Publish(ev); err != nil {
			// partial failure must not block the remaining events
			log.WithFields(log.Fields{
				"eventType": ev.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	log.WithFields(log.Fields{
		"discardedEventCount": len(b.pending),
	}).Debug("Discarding pending events from transactional bus")
	b.pending = nil
}
