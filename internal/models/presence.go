package models

import "time"

// TrackedPresence is the in-memory state of one online player. An entry
// exists iff the player was seen online in the most recent processed snapshot
// and has not been confirmed absent or reaped. SessionStartedAt is set once
// at join and never changes until the entry is removed.
type TrackedPresence struct {
	LastSeenAt       time.Time         `json:"last_seen_at"`
	LastPing         int               `json:"last_ping"`
	Identifiers      map[string]string `json:"identifiers"`
	Job              string            `json:"job"`
	Role             string            `json:"role"`
	SessionStartedAt time.Time         `json:"session_started_at"`
}

// PresenceState is the on-disk format of the presence map, saved across
// restarts so in-flight sessions keep their start times.
type PresenceState struct {
	SavedAt time.Time                  `json:"saved_at"`
	Players map[string]TrackedPresence `json:"players"`
}
