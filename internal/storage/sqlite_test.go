package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fivemon/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testUpdate(name string, playtime int64, seenAt time.Time) models.PlayerUpdate {
	return models.PlayerUpdate{
		Name:        name,
		Identifiers: map[string]string{"license": "abc123"},
		Ping:        42,
		Job:         models.DefaultJob,
		Role:        models.DefaultRole,
		SessionTime: playtime,
		SeenAt:      seenAt,
	}
}

func TestUpsertPlayer_AccumulatesPlaytime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 10, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 20, now.Add(time.Minute))))

	p, err := store.GetPlayer(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Playtime)
	assert.Equal(t, "abc123", p.Identifiers["license"])
}

func TestUpsertPlayer_FirstSeenIsStable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 0, first)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 30, first.Add(time.Hour))))

	p, err := store.GetPlayer(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, first, p.FirstSeen.UTC().Truncate(time.Second))
	assert.Equal(t, first.Add(time.Hour), p.LastSeen.UTC().Truncate(time.Second))
}

func TestUpsertPlayer_ReactivatesInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	old := time.Now().UTC().AddDate(0, 0, -60)

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 10, old)))
	flagged, err := store.MarkPlayersInactiveBefore(ctx, time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 30, time.Now().UTC())))

	p, err := store.GetPlayer(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, p.Status)
}

func TestIncrementSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 0, now)))
	require.NoError(t, store.IncrementSessions(ctx, "Alice"))
	require.NoError(t, store.IncrementSessions(ctx, "Alice"))

	p, err := store.GetPlayer(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalSessions)
}

func TestGetPlayer_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPlayer(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchPlayers_CaseInsensitiveSubstring(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("DragonSlayer", 10, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("dragonfly", 10, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Knight", 10, now)))

	found, err := store.SearchPlayers(ctx, "dragon", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGetPlayersByPlaytime_OrderAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Low", 100, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("High", 500, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Zero", 0, now)))

	top, err := store.GetPlayersByPlaytime(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "High", top[0].Name)
	assert.Equal(t, "Low", top[1].Name)
}

func TestPlayerAggregates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("A", 100, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("B", 300, now)))
	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Old", 999, now.AddDate(0, 0, -90))))

	agg, err := store.PlayerAggregates(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 2, agg.TotalPlayers)
	assert.Equal(t, int64(400), agg.TotalPlaytime)
	assert.Equal(t, int64(200), agg.AvgPlaytime)
	assert.Equal(t, int64(300), agg.MaxPlaytime)
}

func TestEvents_AppendQueryAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	events := []models.Event{
		{Timestamp: base, Type: models.EventJoin, PlayerName: "Alice", Details: models.EventDetails{Ping: 40}},
		{Timestamp: base.Add(time.Minute), Type: models.EventJoin, PlayerName: "Bob"},
		{Timestamp: base.Add(2 * time.Minute), Type: models.EventLeave, PlayerName: "Alice",
			Details: models.EventDetails{SessionDuration: 120, Reason: models.ReasonDeparted}},
	}
	for _, e := range events {
		require.NoError(t, store.AppendEvent(ctx, e))
	}

	all, err := store.QueryEvents(ctx, models.EventFilter{}, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alice", all[0].PlayerName)

	leaves, err := store.QueryEvents(ctx, models.EventFilter{Type: models.EventLeave}, 100)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, int64(120), leaves[0].Details.SessionDuration)
	assert.Equal(t, models.ReasonDeparted, leaves[0].Details.Reason)

	alice, err := store.QueryEvents(ctx, models.EventFilter{PlayerName: "Alice"}, 100)
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	windowed, err := store.QueryEvents(ctx, models.EventFilter{Since: base.Add(30 * time.Second)}, 100)
	require.NoError(t, err)
	assert.Len(t, windowed, 2)
}

func TestEvents_ChronologicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	// Insert out of order; the query must come back chronological.
	require.NoError(t, store.AppendEvent(ctx, models.Event{Timestamp: base.Add(time.Minute), Type: models.EventLeave, PlayerName: "A"}))
	require.NoError(t, store.AppendEvent(ctx, models.Event{Timestamp: base, Type: models.EventJoin, PlayerName: "A"}))

	all, err := store.QueryEvents(ctx, models.EventFilter{}, 100)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.EventJoin, all[0].Type)
	assert.Equal(t, models.EventLeave, all[1].Type)
}

func TestRecentEvents_NewestWinOverLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, name := range []string{"Oldest", "Middle", "Newest"} {
		require.NoError(t, store.AppendEvent(ctx, models.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      models.EventJoin, PlayerName: name,
		}))
	}

	recent, err := store.RecentEvents(ctx, models.EventFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Middle", recent[0].PlayerName)
	assert.Equal(t, "Newest", recent[1].PlayerName)

	// Filters still apply before the newest-first cut.
	joins, err := store.RecentEvents(ctx, models.EventFilter{Type: models.EventJoin}, 10)
	require.NoError(t, err)
	assert.Len(t, joins, 3)
}

func TestPingStats_EmptyWindowIsNil(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.QueryPingStats(context.Background(), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestPingStats_Aggregation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	samples := []models.PingSample{
		{Timestamp: now.Add(-30 * time.Minute), Low: 20, Avg: 40, High: 80, ServerPing: 15},
		{Timestamp: now.Add(-20 * time.Minute), Low: 30, Avg: 60, High: 120, ServerPing: 18},
		{Timestamp: now.Add(-2 * time.Hour), Low: 999, Avg: 999, High: 999, ServerPing: 999},
	}
	for _, s := range samples {
		require.NoError(t, store.AppendPingSample(ctx, s))
	}

	stats, err := store.QueryPingStats(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Samples)
	assert.InDelta(t, 25, stats.Low, 0.001)
	assert.InDelta(t, 50, stats.Avg, 0.001)
	assert.InDelta(t, 100, stats.High, 0.001)
	assert.InDelta(t, 20, stats.Min, 0.001)
	assert.InDelta(t, 120, stats.Max, 0.001)
}

func TestDailyStats_UpsertKeepsMaximum(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertDailyStat(ctx, models.DailyStat{Date: day, PeakPlayers: 12, GeneratedAt: day}))
	require.NoError(t, store.UpsertDailyStat(ctx, models.DailyStat{Date: day, PeakPlayers: 8, GeneratedAt: day.Add(time.Hour)}))
	require.NoError(t, store.UpsertDailyStat(ctx, models.DailyStat{Date: day, PeakPlayers: 15, GeneratedAt: day.Add(2 * time.Hour)}))

	stats, err := store.GetDailyStats(ctx, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 15, stats[0].PeakPlayers)
}

func TestRetention_Deletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.AppendPingSample(ctx, models.PingSample{Timestamp: now.AddDate(0, 0, -40), Low: 1, Avg: 1, High: 1}))
	require.NoError(t, store.AppendPingSample(ctx, models.PingSample{Timestamp: now, Low: 1, Avg: 1, High: 1}))
	require.NoError(t, store.AppendEvent(ctx, models.Event{Timestamp: now.AddDate(0, 0, -100), Type: models.EventJoin, PlayerName: "A"}))
	require.NoError(t, store.AppendEvent(ctx, models.Event{Timestamp: now, Type: models.EventJoin, PlayerName: "B"}))

	pings, err := store.DeletePingSamplesBefore(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pings)

	events, err := store.DeleteEventsBefore(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), events)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Events)
	assert.Equal(t, 1, counts.PingSamples)
}

func TestCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.UpsertPlayer(ctx, testUpdate("Alice", 0, now)))
	require.NoError(t, store.AppendEvent(ctx, models.Event{Timestamp: now, Type: models.EventJoin, PlayerName: "Alice"}))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Players)
	assert.Equal(t, 1, counts.Events)
	assert.Equal(t, 0, counts.PingSamples)
}
