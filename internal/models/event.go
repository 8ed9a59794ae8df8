package models

import "time"

type EventType string

const (
	EventJoin  EventType = "join"
	EventLeave EventType = "leave"
)

const (
	ReasonDeparted = "departed"
	ReasonTimeout  = "timeout"
)

// EventDetails carries the type-specific payload: ping/identifiers for joins,
// session duration and reason for leaves.
type EventDetails struct {
	Ping            int               `json:"ping,omitempty"`
	Identifiers     map[string]string `json:"identifiers,omitempty"`
	SessionDuration int64             `json:"session_duration,omitempty"`
	Reason          string            `json:"reason,omitempty"`
}

// Event is one append-only join/leave log entry. Immutable once written.
type Event struct {
	ID         int64        `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	Type       EventType    `json:"type"`
	PlayerName string       `json:"player_name"`
	Details    EventDetails `json:"details"`
}

// EventFilter narrows event queries. Zero values mean "no constraint".
type EventFilter struct {
	Type       EventType
	PlayerName string
	Since      time.Time
	Until      time.Time
}
