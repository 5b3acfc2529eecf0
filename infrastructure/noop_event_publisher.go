package infrastructure

import (
	"casinobot/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// CLI admin commands use it so grants do not notify a running bot.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
