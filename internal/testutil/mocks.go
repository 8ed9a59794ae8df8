package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fivemon/internal/models"
	"fivemon/internal/providers"
	"fivemon/internal/storage"
	"fivemon/internal/tracker"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	Ticks         map[string]int
	FetchFailures map[string]int
	PlayersOnline int
	Joins         int
	Leaves        map[string]int
	WriteFailures map[string]int
	Persistences  int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Ticks:         make(map[string]int),
		FetchFailures: make(map[string]int),
		Leaves:        make(map[string]int),
		WriteFailures: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncTicksTotal(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ticks[result]++
}

func (m *MockMetrics) ObserveTickDuration(_ time.Duration) {}

func (m *MockMetrics) IncFetchFailures(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFailures[endpoint]++
}

func (m *MockMetrics) SetPlayersOnline(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayersOnline = count
}

func (m *MockMetrics) IncJoins() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Joins++
}

func (m *MockMetrics) IncLeaves(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Leaves[reason]++
}

func (m *MockMetrics) IncStoreWriteFailures(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteFailures[op]++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistences++
}

// MockNotifier implements notify.NotifierInterface and records deliveries.
type MockNotifier struct {
	mu            sync.Mutex
	Joins         []tracker.Join
	Leaves        []tracker.Leave
	StatusChanges []bool
}

func (m *MockNotifier) PlayerJoined(join tracker.Join) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Joins = append(m.Joins, join)
}

func (m *MockNotifier) PlayerLeft(leave tracker.Leave) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Leaves = append(m.Leaves, leave)
}

func (m *MockNotifier) ServerStatusChanged(online bool, _ string, _, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusChanges = append(m.StatusChanges, online)
}

// MockClient implements fivem.ClientInterface, returning queued snapshots and
// repeating the last one when the queue runs dry.
type MockClient struct {
	mu    sync.Mutex
	Queue []*models.Snapshot
	last  *models.Snapshot
}

func (m *MockClient) Push(snap *models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queue = append(m.Queue, snap)
}

func (m *MockClient) Fetch(_ context.Context) *models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queue) > 0 {
		m.last = m.Queue[0]
		m.Queue = m.Queue[1:]
	}
	if m.last == nil {
		return &models.Snapshot{FetchedAt: time.Now().UTC()}
	}
	return m.last
}

// MockStore is an in-memory storage.StoreInterface with injectable failures.
type MockStore struct {
	mu          sync.Mutex
	Players     map[string]*models.PlayerRecord
	Events      []models.Event
	PingSamples []models.PingSample
	DailyStats  map[string]models.DailyStat
	FailOps     map[string]error
	nextEventID int64
}

func NewMockStore() *MockStore {
	return &MockStore{
		Players:    make(map[string]*models.PlayerRecord),
		DailyStats: make(map[string]models.DailyStat),
		FailOps:    make(map[string]error),
	}
}

func (m *MockStore) fail(op string) error {
	if err, ok := m.FailOps[op]; ok {
		return err
	}
	return nil
}

func (m *MockStore) UpsertPlayer(_ context.Context, update models.PlayerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpsertPlayer"); err != nil {
		return err
	}

	p, ok := m.Players[update.Name]
	if !ok {
		p = &models.PlayerRecord{
			Name:      update.Name,
			FirstSeen: update.SeenAt,
			Job:       update.Job,
			Role:      update.Role,
			Status:    models.StatusActive,
		}
		m.Players[update.Name] = p
	}
	p.Identifiers = update.Identifiers
	p.LastSeen = update.SeenAt
	p.LastPing = update.Ping
	p.Job = update.Job
	p.Role = update.Role
	p.Playtime += update.SessionTime
	p.Status = models.StatusActive
	return nil
}

func (m *MockStore) IncrementSessions(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("IncrementSessions"); err != nil {
		return err
	}
	if p, ok := m.Players[name]; ok {
		p.TotalSessions++
	}
	return nil
}

func (m *MockStore) GetPlayer(_ context.Context, name string) (*models.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetPlayer"); err != nil {
		return nil, err
	}
	p, ok := m.Players[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) SearchPlayers(_ context.Context, query string, limit int) ([]models.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PlayerRecord
	for _, p := range m.Players {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStore) GetPlayersByPlaytime(_ context.Context, limit int) ([]models.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetPlayersByPlaytime"); err != nil {
		return nil, err
	}
	var out []models.PlayerRecord
	for _, p := range m.Players {
		if p.Playtime > 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Playtime > out[j].Playtime })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStore) CountActivePlayers(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.Players {
		if !p.LastSeen.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) PlayerAggregates(_ context.Context, since time.Time) (storage.PlayerAggregates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var agg storage.PlayerAggregates
	for _, p := range m.Players {
		if p.LastSeen.Before(since) {
			continue
		}
		agg.TotalPlayers++
		agg.TotalPlaytime += p.Playtime
		if p.Playtime > agg.MaxPlaytime {
			agg.MaxPlaytime = p.Playtime
		}
	}
	if agg.TotalPlayers > 0 {
		agg.AvgPlaytime = agg.TotalPlaytime / int64(agg.TotalPlayers)
	}
	return agg, nil
}

func (m *MockStore) AppendEvent(_ context.Context, event models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AppendEvent"); err != nil {
		return err
	}
	m.nextEventID++
	event.ID = m.nextEventID
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockStore) QueryEvents(_ context.Context, filter models.EventFilter, limit int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("QueryEvents"); err != nil {
		return nil, err
	}
	var out []models.Event
	for _, e := range m.Events {
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.PlayerName != "" && e.PlayerName != filter.PlayerName {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && e.Timestamp.After(filter.Until) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStore) RecentEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error) {
	if err := m.fail("RecentEvents"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	total := len(m.Events)
	m.mu.Unlock()
	out, err := m.QueryEvents(ctx, filter, total)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MockStore) AppendPingSample(_ context.Context, sample models.PingSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AppendPingSample"); err != nil {
		return err
	}
	m.PingSamples = append(m.PingSamples, sample)
	return nil
}

func (m *MockStore) QueryPingStats(_ context.Context, since time.Time) (*models.PingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats models.PingStats
	var lowSum, avgSum, highSum float64
	for _, s := range m.PingSamples {
		if s.Timestamp.Before(since) {
			continue
		}
		if stats.Samples == 0 || s.Low < stats.Min {
			stats.Min = s.Low
		}
		if s.High > stats.Max {
			stats.Max = s.High
		}
		lowSum += s.Low
		avgSum += s.Avg
		highSum += s.High
		stats.Samples++
	}
	if stats.Samples == 0 {
		return nil, nil
	}
	n := float64(stats.Samples)
	stats.Low = lowSum / n
	stats.Avg = avgSum / n
	stats.High = highSum / n
	return &stats, nil
}

func (m *MockStore) CountPingSamples(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.PingSamples {
		if !s.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) UpsertDailyStat(_ context.Context, stat models.DailyStat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpsertDailyStat"); err != nil {
		return err
	}
	key := stat.Date.Format("2006-01-02")
	if existing, ok := m.DailyStats[key]; ok && existing.PeakPlayers > stat.PeakPlayers {
		stat.PeakPlayers = existing.PeakPlayers
	}
	m.DailyStats[key] = stat
	return nil
}

func (m *MockStore) GetDailyStats(_ context.Context, since time.Time) ([]models.DailyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DailyStat
	for _, s := range m.DailyStats {
		if !s.Date.Before(since) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MockStore) DeletePingSamplesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.PingSample
	var removed int64
	for _, s := range m.PingSamples {
		if s.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.PingSamples = kept
	return removed, nil
}

func (m *MockStore) DeleteEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.Event
	var removed int64
	for _, e := range m.Events {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.Events = kept
	return removed, nil
}

func (m *MockStore) MarkPlayersInactiveBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var flagged int64
	for _, p := range m.Players {
		if p.Status == models.StatusActive && p.LastSeen.Before(cutoff) {
			p.Status = models.StatusInactive
			flagged++
		}
	}
	return flagged, nil
}

func (m *MockStore) Counts(_ context.Context) (storage.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return storage.Counts{
		Players:     len(m.Players),
		Events:      len(m.Events),
		PingSamples: len(m.PingSamples),
	}, nil
}

func (m *MockStore) Close() error { return nil }
