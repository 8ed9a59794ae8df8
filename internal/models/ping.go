package models

import "time"

// PingSample is one per-tick ping observation: low/avg/high across the roster
// plus the bare server round-trip.
type PingSample struct {
	Timestamp  time.Time `json:"timestamp"`
	Low        float64   `json:"low"`
	Avg        float64   `json:"avg"`
	High       float64   `json:"high"`
	ServerPing float64   `json:"server_ping"`
}

// PingStats aggregates samples over a query window. A nil *PingStats is the
// "no data" signal and is distinct from a zero-valued result.
type PingStats struct {
	Low     float64 `json:"low"`
	Avg     float64 `json:"avg"`
	High    float64 `json:"high"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}
