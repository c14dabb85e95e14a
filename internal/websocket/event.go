package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeCompleted EventType = "completed"
	EventTypeReady     EventType = "ready"
	EventTypeResult    EventType = "result"
	EventTypeAccepted  EventType = "accepted"
	EventTypeRejected  EventType = "rejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeProfile     EntityType = "profile"
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeGoal        EntityType = "goal"
	EntityTypeReport      EntityType = "report"
	EntityTypeFilter      EntityType = "filter"
	EntityTypeCommand     EntityType = "command"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp, requestId? }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "goal.completed"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "goal"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
	RequestID string      `json:"requestId,omitempty"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ProfileCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeProfile, payload)
}

func ProfileUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeProfile, payload)
}

func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

func GoalCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeGoal, payload)
}

func GoalUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeGoal, payload)
}

func GoalDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeGoal, payload)
}

// GoalCompleted is sent once, when a goal's saved value first reaches its target
func GoalCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeGoal, payload)
}

// ReportReady tells the client a report has been computed and can be drawn
func ReportReady(payload interface{}) Event {
	return NewEvent(EventTypeReady, EntityTypeReport, payload)
}

func FilterUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeFilter, payload)
}
