package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPostCreated EventType = "post_created"
	EventPostUpdated EventType = "post_updated"
	EventPostDeleted EventType = "post_deleted"
	EventUserCreated EventType = "user_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Resource    string         `json:"resource"`
	ResourceID  string         `json:"resource_id"`
	PerformedBy string         `json:"performed_by"`
	Timestamp   time.Time      `json:"timestamp"`
	Meta        map[string]any `json:"meta,omitempty"`
}
