package model

import "time"

type EventType string

const (
	EventClientAdded    EventType = "client.added"
	EventClientDeleted  EventType = "client.deleted"
	EventProjectAdded   EventType = "project.added"
	EventProjectUpdated EventType = "project.updated"
	EventProjectDeleted EventType = "project.deleted"
)

// Event announces a completed mutation to other services.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Client     *Client   `json:"client,omitempty"`
	Project    *Project  `json:"project,omitempty"`
}

func ClientEvent(t EventType, c *Client) Event {
	return Event{Type: t, OccurredAt: time.Now().UTC(), Client: c}
}

func ProjectEvent(t EventType, p *Project) Event {
	return Event{Type: t, OccurredAt: time.Now().UTC(), Project: p}
}
