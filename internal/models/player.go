package models

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	DefaultJob  = "civilian"
	DefaultRole = "civilian"
)

// PlayerRecord is the durable per-player row. Playtime and session counts are
// only ever mutated through atomic increments at the store.
type PlayerRecord struct {
	Name          string            `json:"name"`
	Identifiers   map[string]string `json:"identifiers"`
	FirstSeen     time.Time         `json:"first_seen"`
	LastSeen      time.Time         `json:"last_seen"`
	Playtime      int64             `json:"playtime"`
	TotalSessions int               `json:"total_sessions"`
	LastPing      int               `json:"last_ping"`
	Job           string            `json:"job"`
	Role          string            `json:"role"`
	Status        string            `json:"status"`
}

// PlayerUpdate is the delta applied by one upsert: metadata refresh plus a
// playtime increment in seconds.
type PlayerUpdate struct {
	Name        string
	Identifiers map[string]string
	Ping        int
	Job         string
	Role        string
	SessionTime int64
	SeenAt      time.Time
}
