package models

import "time"

// DailyStat is one upserted row per calendar day.
type DailyStat struct {
	Date        time.Time `json:"date"`
	PeakPlayers int       `json:"peak_players"`
	GeneratedAt time.Time `json:"generated_at"`
}

// OnlinePlayer is the read model of a currently tracked session.
type OnlinePlayer struct {
	Name            string    `json:"name"`
	Ping            int       `json:"ping"`
	Job             string    `json:"job"`
	Role            string    `json:"role"`
	OnlineSince     time.Time `json:"online_since"`
	SessionDuration int64     `json:"session_duration"`
}

// ServerStats is the aggregate statistics result for a historical window.
type ServerStats struct {
	PeakPlayers      int       `json:"peak_players"`
	CurrentPlayers   int       `json:"current_players"`
	AvgPlayers       float64   `json:"avg_players"`
	AvgPing          float64   `json:"avg_ping"`
	TotalPlaytime    int64     `json:"total_playtime"`
	ActivePlayers    int       `json:"active_players"`
	UptimePercentage float64   `json:"uptime_percentage"`
	PeriodDays       int       `json:"period_days"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// SessionStats summarizes the sessions currently in flight.
type SessionStats struct {
	TotalOnline        int            `json:"total_online"`
	AverageSessionTime int64          `json:"average_session_time"`
	LongestSession     int64          `json:"longest_session"`
	AveragePing        float64        `json:"average_ping"`
	Players            []OnlinePlayer `json:"players"`
}

// PlayerInfo combines the durable record with live session state and recent
// activity for lookups.
type PlayerInfo struct {
	PlayerRecord
	Online                 bool    `json:"online"`
	CurrentSessionDuration int64   `json:"current_session_duration"`
	AvgSessionDuration     int64   `json:"avg_session_duration"`
	RecentEvents           []Event `json:"recent_events"`
}
