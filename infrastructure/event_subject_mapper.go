package infrastructure

import (
	"strings"

	"casinobot/events"
)

// SubjectPrefix namespaces every casino subject
const SubjectPrefix = "casino."

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its subject, e.g. casino.balance_change
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return SubjectPrefix + string(event.Type())
}

// MapSubjectToEventType converts a subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	return events.EventType(strings.TrimPrefix(subject, SubjectPrefix))
}

// GetAllSubjects returns every subject this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, len(events.AllEventTypes))
	for i, eventType := range events.AllEventTypes {
		subjects[i] = SubjectPrefix + string(eventType)
	}
	return subjects
}
