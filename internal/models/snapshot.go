package models

import "time"

// RosterEntry is one player as reported by the status source, normalized at
// the fetcher boundary. Names are unique within a snapshot.
type RosterEntry struct {
	Name        string            `json:"name"`
	Ping        int               `json:"ping"`
	Identifiers map[string]string `json:"identifiers"`
	Job         string            `json:"job"`
	Role        string            `json:"role"`
}

// Snapshot is a normalized point-in-time read of the game server. Immutable
// after the fetcher returns it.
type Snapshot struct {
	Online     bool          `json:"online"`
	Hostname   string        `json:"hostname"`
	Clients    int           `json:"clients"`
	MaxClients int           `json:"max_clients"`
	MapName    string        `json:"mapname"`
	GameType   string        `json:"gametype"`
	Ping       float64       `json:"ping"`
	Roster     []RosterEntry `json:"roster"`
	Resources  []string      `json:"resources"`
	FetchedAt  time.Time     `json:"fetched_at"`
}

// RosterNames returns the set of names present in the roster.
func (s *Snapshot) RosterNames() map[string]struct{} {
	names := make(map[string]struct{}, len(s.Roster))
	for _, e := range s.Roster {
		names[e.Name] = struct{}{}
	}
	return names
}
