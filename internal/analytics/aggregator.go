package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"fivemon/internal/models"
	"fivemon/internal/providers"
	"fivemon/internal/storage"
	"fivemon/internal/structures"
	"fivemon/internal/tracker"
)

// replayCap bounds the number of events pulled for a peak-concurrency replay.
const replayCap = 10000

// playerEventWindow is how many of a player's newest events feed the profile
// view and the average-session rollup.
const playerEventWindow = 50

type AggregatorInterface interface {
	RecordPing(ctx context.Context, serverPing float64, playerPings []int, at time.Time) error
	PingStats(ctx context.Context, window time.Duration) (*models.PingStats, error)
	PeakPlayers(ctx context.Context, window time.Duration, now time.Time) (int, error)
	UptimePercentage(ctx context.Context, window time.Duration, now time.Time) (float64, error)
	ServerStats(ctx context.Context, days int) (models.ServerStats, error)
	SessionStats(now time.Time) models.SessionStats
	PlayerInfo(ctx context.Context, name string) (*models.PlayerInfo, error)
	SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerRecord, error)
	TopPlayers(ctx context.Context, limit int) ([]models.PlayerRecord, error)
	RecentEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error)
}

type Aggregator struct {
	store    storage.StoreInterface
	tracker  *tracker.Tracker
	interval time.Duration
	logger   providers.Logger
}

func NewAggregator(conf *structures.Config, store storage.StoreInterface, trk *tracker.Tracker, logger providers.Logger) AggregatorInterface {
	return &Aggregator{
		store:    store,
		tracker:  trk,
		interval: conf.Monitor.PollInterval,
		logger:   logger,
	}
}

// RecordPing appends one sample: low/avg/high across the given per-player
// pings, falling back to the bare server ping when nobody is online.
func (a *Aggregator) RecordPing(ctx context.Context, serverPing float64, playerPings []int, at time.Time) error {
	sample := models.PingSample{
		Timestamp:  at,
		Low:        serverPing,
		Avg:        serverPing,
		High:       serverPing,
		ServerPing: serverPing,
	}

	if len(playerPings) > 0 {
		low, high, sum := playerPings[0], playerPings[0], 0
		for _, p := range playerPings {
			if p < low {
				low = p
			}
			if p > high {
				high = p
			}
			sum += p
		}
		sample.Low = float64(low)
		sample.High = float64(high)
		sample.Avg = float64(sum) / float64(len(playerPings))
	}

	return a.store.AppendPingSample(ctx, sample)
}

// PingStats aggregates stored samples over the window. Returns nil on an
// empty window; per-player pings are not retained past their tick, so this
// averages the per-sample low/avg/high fields.
func (a *Aggregator) PingStats(ctx context.Context, window time.Duration) (*models.PingStats, error) {
	return a.store.QueryPingStats(ctx, time.Now().UTC().Add(-window))
}

// PeakPlayers replays join/leave events chronologically within the window and
// tracks the maximum concurrent-set size. Only transitions are durably
// logged, so replay is the source of truth; with no events in the window the
// live tracked count is the best available answer.
func (a *Aggregator) PeakPlayers(ctx context.Context, window time.Duration, now time.Time) (int, error) {
	events, err := a.store.QueryEvents(ctx, models.EventFilter{Since: now.Add(-window)}, replayCap)
	if err != nil {
		return 0, fmt.Errorf("failed to load events for replay: %w", err)
	}
	if len(events) == 0 {
		return a.tracker.Count(), nil
	}

	concurrent := make(map[string]struct{})
	peak := 0
	for _, e := range events {
		switch e.Type {
		case models.EventJoin:
			concurrent[e.PlayerName] = struct{}{}
		case models.EventLeave:
			delete(concurrent, e.PlayerName)
		}
		if len(concurrent) > peak {
			peak = len(concurrent)
		}
	}
	return peak, nil
}

// UptimePercentage uses the successful-sample count as a proxy for poll
// availability. This is an approximation: it measures how often the monitor
// got an online answer, not an external heartbeat.
func (a *Aggregator) UptimePercentage(ctx context.Context, window time.Duration, now time.Time) (float64, error) {
	expected := window.Seconds() / a.interval.Seconds()
	if expected <= 0 {
		return 100, nil
	}

	actual, err := a.store.CountPingSamples(ctx, now.Add(-window))
	if err != nil {
		return 0, err
	}

	uptime := math.Min(float64(actual)/expected*100, 100)
	return math.Round(uptime*10) / 10, nil
}

func (a *Aggregator) ServerStats(ctx context.Context, days int) (models.ServerStats, error) {
	now := time.Now().UTC()
	window := time.Duration(days) * 24 * time.Hour

	stats := models.ServerStats{
		CurrentPlayers: a.tracker.Count(),
		PeriodDays:     days,
		GeneratedAt:    now,
	}

	peak, err := a.PeakPlayers(ctx, window, now)
	if err != nil {
		return stats, err
	}
	stats.PeakPlayers = peak

	if ping, err := a.PingStats(ctx, window); err != nil {
		return stats, err
	} else if ping != nil {
		stats.AvgPing = ping.Avg
	}

	agg, err := a.store.PlayerAggregates(ctx, now.Add(-window))
	if err != nil {
		return stats, err
	}
	stats.TotalPlaytime = agg.TotalPlaytime

	if daily, err := a.store.GetDailyStats(ctx, now.Add(-window)); err != nil {
		return stats, err
	} else if len(daily) > 0 {
		sum := 0
		for _, d := range daily {
			sum += d.PeakPlayers
		}
		stats.AvgPlayers = float64(sum) / float64(len(daily))
	}

	active, err := a.store.CountActivePlayers(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return stats, err
	}
	stats.ActivePlayers = active

	uptime, err := a.UptimePercentage(ctx, window, now)
	if err != nil {
		return stats, err
	}
	stats.UptimePercentage = uptime

	return stats, nil
}

// SessionStats summarizes the sessions currently in flight; purely live data,
// no store round-trip.
func (a *Aggregator) SessionStats(now time.Time) models.SessionStats {
	online := a.tracker.OnlinePlayers(now)
	stats := models.SessionStats{
		TotalOnline: len(online),
		Players:     online,
	}
	if len(online) == 0 {
		return stats
	}

	var totalDuration int64
	pingSum, pingCount := 0, 0
	for _, p := range online {
		totalDuration += p.SessionDuration
		if p.SessionDuration > stats.LongestSession {
			stats.LongestSession = p.SessionDuration
		}
		if p.Ping > 0 {
			pingSum += p.Ping
			pingCount++
		}
	}
	stats.AverageSessionTime = totalDuration / int64(len(online))
	if pingCount > 0 {
		stats.AveragePing = math.Round(float64(pingSum)/float64(pingCount)*10) / 10
	}
	return stats
}

func (a *Aggregator) PlayerInfo(ctx context.Context, name string) (*models.PlayerInfo, error) {
	record, err := a.store.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	info := &models.PlayerInfo{PlayerRecord: *record}

	events, err := a.store.RecentEvents(ctx, models.EventFilter{PlayerName: name}, playerEventWindow)
	if err != nil {
		return nil, err
	}
	// Newest last from the store; keep the tail for display.
	if len(events) > 5 {
		info.RecentEvents = events[len(events)-5:]
	} else {
		info.RecentEvents = events
	}

	var sessionSum, sessionCount int64
	for i := len(events) - 1; i >= 0 && sessionCount < 10; i-- {
		e := events[i]
		if e.Type == models.EventLeave && e.Details.SessionDuration > 0 {
			sessionSum += e.Details.SessionDuration
			sessionCount++
		}
	}
	if sessionCount > 0 {
		info.AvgSessionDuration = sessionSum / sessionCount
	}

	if started, online := a.tracker.Session(name); online {
		info.Online = true
		info.CurrentSessionDuration = int64(time.Now().UTC().Sub(started).Seconds())
	}

	return info, nil
}

func (a *Aggregator) SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerRecord, error) {
	return a.store.SearchPlayers(ctx, query, limit)
}

func (a *Aggregator) TopPlayers(ctx context.Context, limit int) ([]models.PlayerRecord, error) {
	return a.store.GetPlayersByPlaytime(ctx, limit)
}

func (a *Aggregator) RecentEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error) {
	return a.store.RecentEvents(ctx, filter, limit)
}
