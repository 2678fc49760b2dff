// Package notify publishes orchestration state changes to subscribers.
//
// Components emit Events through a Notifier; hosts subscribe with a
// LogNotifier, a ChannelNotifier feeding a UI loop, or a MultiNotifier
// fanning out to several sinks. Delivery is synchronous and must never
// block the emitting component.
package notify

import "time"

// EventType identifies what changed.
type EventType string

// Event type constants.
const (
	EventRecordingStarted EventType = "recording_started"
	EventRecordingStopped EventType = "recording_stopped"
	EventPolishStarted    EventType = "polish_started"
	EventPolishSucceeded  EventType = "polish_succeeded"
	EventPolishFailed     EventType = "polish_failed"
	EventNoteSaved        EventType = "note_saved"
	EventNoteDeleted      EventType = "note_deleted"
	EventHistoryCleared   EventType = "history_cleared"
	EventSignedIn         EventType = "signed_in"
	EventSignedOut        EventType = "signed_out"
)

// Severity constants.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Event describes one orchestration state change.
type Event struct {
	Type      EventType      `json:"type"`
	Message   string         `json:"message,omitempty"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier receives orchestration events.
type Notifier interface {
	// Notify delivers an event. Implementations must not block the
	// orchestration path and handle their own failures.
	Notify(event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(Event) {}

// NewEvent builds an Event with the current timestamp.
func NewEvent(eventType EventType, message string) Event {
	return Event{
		Type:      eventType,
		Message:   message,
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}
}
