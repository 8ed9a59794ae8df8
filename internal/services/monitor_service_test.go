package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fivemon/internal/analytics"
	"fivemon/internal/models"
	"fivemon/internal/structures"
	"fivemon/internal/testutil"
	"fivemon/internal/tracker"
)

type tickFixture struct {
	service  *MonitorService
	client   *testutil.MockClient
	store    *testutil.MockStore
	notifier *testutil.MockNotifier
	metrics  *testutil.MockMetrics
	tracker  *tracker.Tracker
}

func newTickFixture(t *testing.T) *tickFixture {
	t.Helper()
	conf := &structures.Config{
		Monitor: structures.MonitorConfig{
			PollInterval:       30 * time.Second,
			PingRetentionDays:  30,
			EventRetentionDays: 90,
			InactiveAfterDays:  30,
		},
	}
	logger := &testutil.MockLogger{}
	client := &testutil.MockClient{}
	store := testutil.NewMockStore()
	notifier := &testutil.MockNotifier{}
	metrics := testutil.NewMockMetrics()
	trk := tracker.NewTracker(conf, logger)
	agg := analytics.NewAggregator(conf, store, trk, logger)

	svc := NewMonitorService(conf, client, trk, store, agg, notifier, metrics, logger).(*MonitorService)
	return &tickFixture{
		service:  svc,
		client:   client,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		tracker:  trk,
	}
}

func snapshotWith(at time.Time, names ...string) *models.Snapshot {
	snap := &models.Snapshot{
		Online:     true,
		Hostname:   "Test RP",
		Clients:    len(names),
		MaxClients: 64,
		Ping:       18,
		FetchedAt:  at,
	}
	for _, n := range names {
		snap.Roster = append(snap.Roster, models.RosterEntry{
			Name: n, Ping: 50,
			Identifiers: map[string]string{"license": "lic-" + n},
			Job:         models.DefaultJob, Role: models.DefaultRole,
		})
	}
	return snap
}

func TestTick_JoinPersistsZeroPlaytime(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "Alice"))
	f.service.Tick(context.Background())

	p, err := f.store.GetPlayer(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Playtime)
	assert.Equal(t, 1, p.TotalSessions)

	events, err := f.store.QueryEvents(context.Background(), models.EventFilter{Type: models.EventJoin}, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Alice", events[0].PlayerName)

	assert.Equal(t, 1, f.metrics.Joins)
	require.Len(t, f.notifier.Joins, 1)
}

func TestTick_StayAccruesOneInterval(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "Alice"))
	f.service.Tick(context.Background())

	f.client.Push(snapshotWith(now.Add(30*time.Second), "Alice"))
	f.service.Tick(context.Background())

	p, err := f.store.GetPlayer(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Playtime)
	assert.Equal(t, 1, p.TotalSessions)
}

func TestTick_DepartureFlushesRemainder(t *testing.T) {
	f := newTickFixture(t)
	start := time.Now().UTC()

	f.client.Push(snapshotWith(start, "Alice"))
	f.service.Tick(context.Background())

	// Two full intervals accrued.
	f.client.Push(snapshotWith(start.Add(30*time.Second), "Alice"))
	f.service.Tick(context.Background())
	f.client.Push(snapshotWith(start.Add(60*time.Second), "Alice"))
	f.service.Tick(context.Background())

	// Departs observed 75s in: the 15s remainder flushes on leave.
	f.client.Push(snapshotWith(start.Add(75 * time.Second)))
	f.service.Tick(context.Background())

	p, err := f.store.GetPlayer(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(75), p.Playtime)

	leaves, err := f.store.QueryEvents(context.Background(), models.EventFilter{Type: models.EventLeave}, 10)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, models.ReasonDeparted, leaves[0].Details.Reason)
	assert.Equal(t, int64(75), leaves[0].Details.SessionDuration)

	assert.Equal(t, 1, f.metrics.Leaves[models.ReasonDeparted])
	require.Len(t, f.notifier.Leaves, 1)
}

func TestPersistLeaves_TimeoutGetsNoRemainder(t *testing.T) {
	f := newTickFixture(t)
	start := time.Now().UTC()

	f.client.Push(snapshotWith(start, "Alice"))
	f.service.Tick(context.Background())
	f.client.Push(snapshotWith(start.Add(30*time.Second), "Alice"))
	f.service.Tick(context.Background())

	// The player may have been gone for the whole stale window, so no
	// remainder is credited on a timeout.
	reaped := f.tracker.Reap(start.Add(10*time.Minute+10*time.Second), 2*time.Minute)
	require.Len(t, reaped, 1)
	f.service.PersistLeaves(context.Background(), reaped)

	p, err := f.store.GetPlayer(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Playtime)

	leaves, err := f.store.QueryEvents(context.Background(), models.EventFilter{Type: models.EventLeave}, 10)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, models.ReasonTimeout, leaves[0].Details.Reason)
	assert.Equal(t, 1, f.metrics.Leaves[models.ReasonTimeout])
}

func TestTick_OfflineRetainsPresence(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "Alice", "Bob"))
	f.service.Tick(context.Background())

	f.client.Push(&models.Snapshot{Online: false, FetchedAt: now.Add(30 * time.Second)})
	f.service.Tick(context.Background())

	assert.Equal(t, 2, f.tracker.Count())
	assert.Equal(t, 1, f.metrics.Ticks["offline"])

	leaves, err := f.store.QueryEvents(context.Background(), models.EventFilter{Type: models.EventLeave}, 10)
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestTick_RecordsPingSample(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "Alice"))
	f.service.Tick(context.Background())

	require.Len(t, f.store.PingSamples, 1)
	assert.Equal(t, float64(50), f.store.PingSamples[0].Avg)
	assert.Equal(t, float64(18), f.store.PingSamples[0].ServerPing)
}

func TestTick_OfflineSkipsPingSample(t *testing.T) {
	f := newTickFixture(t)

	f.client.Push(&models.Snapshot{Online: false, FetchedAt: time.Now().UTC()})
	f.service.Tick(context.Background())

	assert.Empty(t, f.store.PingSamples)
}

func TestTick_UpsertsDailyPeak(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "A", "B", "C"))
	f.service.Tick(context.Background())

	stats, err := f.store.GetDailyStats(context.Background(), now.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].PeakPlayers)
}

func TestTick_StatusChangeNotifiedOnce(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.client.Push(snapshotWith(now, "Alice"))
	f.service.Tick(context.Background())
	f.client.Push(snapshotWith(now.Add(30*time.Second), "Alice"))
	f.service.Tick(context.Background())

	f.client.Push(&models.Snapshot{Online: false, FetchedAt: now.Add(60 * time.Second)})
	f.service.Tick(context.Background())
	f.client.Push(&models.Snapshot{Online: false, FetchedAt: now.Add(90 * time.Second)})
	f.service.Tick(context.Background())

	// online once, offline once, despite four ticks.
	assert.Equal(t, []bool{true, false}, f.notifier.StatusChanges)
	assert.False(t, f.service.ServerOnline())
}

func TestTick_StoreFailureDoesNotAbortTick(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	f.store.FailOps["AppendEvent"] = errors.New("disk full")

	f.client.Push(snapshotWith(now, "Alice", "Bob"))
	f.service.Tick(context.Background())

	// Events failed, but players were still upserted and the tick finished.
	_, err := f.store.GetPlayer(context.Background(), "Alice")
	assert.NoError(t, err)
	_, err = f.store.GetPlayer(context.Background(), "Bob")
	assert.NoError(t, err)
	assert.Equal(t, 1, f.metrics.Ticks["ok"])
	assert.Equal(t, 2, f.metrics.WriteFailures["event_append"])
}

func TestCurrentSnapshot_ExposedAfterTick(t *testing.T) {
	f := newTickFixture(t)
	now := time.Now().UTC()

	assert.Nil(t, f.service.CurrentSnapshot())

	f.client.Push(snapshotWith(now, "Alice"))
	f.service.Tick(context.Background())

	snap := f.service.CurrentSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "Test RP", snap.Hostname)
	assert.True(t, f.service.ServerOnline())
}

func TestCleanup_PrunesAndFlags(t *testing.T) {
	f := newTickFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, f.store.AppendPingSample(ctx, models.PingSample{Timestamp: now.AddDate(0, 0, -40)}))
	require.NoError(t, f.store.AppendEvent(ctx, models.Event{Timestamp: now.AddDate(0, 0, -100), Type: models.EventJoin, PlayerName: "Old"}))
	require.NoError(t, f.store.UpsertPlayer(ctx, models.PlayerUpdate{Name: "Ghost", SeenAt: now.AddDate(0, 0, -60)}))

	f.service.Cleanup(ctx)

	assert.Empty(t, f.store.PingSamples)
	assert.Empty(t, f.store.Events)
	ghost, err := f.store.GetPlayer(ctx, "Ghost")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, ghost.Status)
}
