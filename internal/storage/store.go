package storage

import (
	"context"
	"time"

	"fivemon/internal/models"
)

// PlayerAggregates is the store-side rollup over players seen in a window.
type PlayerAggregates struct {
	TotalPlayers  int   `json:"total_players"`
	TotalPlaytime int64 `json:"total_playtime"`
	AvgPlaytime   int64 `json:"avg_playtime"`
	MaxPlaytime   int64 `json:"max_playtime"`
}

// Counts reports table sizes for health checks.
type Counts struct {
	Players     int `json:"players"`
	Events      int `json:"events"`
	PingSamples int `json:"ping_samples"`
}

// StoreInterface is the persistence adapter consumed by the reconciler and
// aggregator. Increment operations are atomic at the store: concurrent
// upserts never lose playtime.
type StoreInterface interface {
	UpsertPlayer(ctx context.Context, update models.PlayerUpdate) error
	IncrementSessions(ctx context.Context, name string) error
	GetPlayer(ctx context.Context, name string) (*models.PlayerRecord, error)
	SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerRecord, error)
	GetPlayersByPlaytime(ctx context.Context, limit int) ([]models.PlayerRecord, error)
	CountActivePlayers(ctx context.Context, since time.Time) (int, error)
	PlayerAggregates(ctx context.Context, since time.Time) (PlayerAggregates, error)

	AppendEvent(ctx context.Context, event models.Event) error
	QueryEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error)
	RecentEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error)

	AppendPingSample(ctx context.Context, sample models.PingSample) error
	QueryPingStats(ctx context.Context, since time.Time) (*models.PingStats, error)
	CountPingSamples(ctx context.Context, since time.Time) (int, error)

	UpsertDailyStat(ctx context.Context, stat models.DailyStat) error
	GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyStat, error)

	DeletePingSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	MarkPlayersInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Counts(ctx context.Context) (Counts, error)
	Close() error
}
