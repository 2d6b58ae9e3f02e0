package infrastructure

import (
	"fmt"

	"dreamchain/events"
)

// DomainEventStream is the JetStream stream holding every forwarded event
const DomainEventStream = "dreamchain_events"

var subjectsByType = map[events.EventType]string{
	events.EventTypeDonationRecorded: "donations.recorded",
	events.EventTypeChancesAwarded:   "users.chances_awarded",
	events.EventTypeDreamCompleted:   "dreams.completed",
	events.EventTypeRatingUpdated:    "users.rating_updated",
	events.EventTypeUserCreated:      "users.created",
	events.EventTypeDreamCreated:     "dreams.created",
	events.EventTypeDreamWithdrawn:   "dreams.withdrawn",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(subjectsByType))
	for _, eventType := range events.AllEventTypes() {
		subjects = append(subjects, subjectsByType[eventType])
	}
	return subjects
}
