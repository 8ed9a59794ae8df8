package services

import (
	"context"
	"sync"
	"time"

	"fivemon/internal/analytics"
	"fivemon/internal/fivem"
	"fivemon/internal/models"
	"fivemon/internal/notify"
	"fivemon/internal/providers"
	"fivemon/internal/storage"
	"fivemon/internal/structures"
	"fivemon/internal/tracker"
)

// MonitorServiceInterface drives one poll cycle and exposes the read side
// needed by the controllers.
type MonitorServiceInterface interface {
	Tick(ctx context.Context)
	PersistLeaves(ctx context.Context, leaves []tracker.Leave)
	Cleanup(ctx context.Context)
	CurrentSnapshot() *models.Snapshot
	ServerOnline() bool
}

// MonitorService is the tick pipeline: fetch a snapshot, reconcile it against
// tracked presence, persist the resulting joins, accruals and leaves, record a
// ping sample and roll today's peak into daily stats. Store failures for one
// player never abort the rest of the tick.
type MonitorService struct {
	client   fivem.ClientInterface
	tracker  *tracker.Tracker
	store    storage.StoreInterface
	agg      analytics.AggregatorInterface
	notifier notify.NotifierInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
	conf     *structures.Config

	mu       sync.RWMutex
	snapshot *models.Snapshot
	online   bool
	seenOnce bool
}

func NewMonitorService(
	conf *structures.Config,
	client fivem.ClientInterface,
	trk *tracker.Tracker,
	store storage.StoreInterface,
	agg analytics.AggregatorInterface,
	notifier notify.NotifierInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) MonitorServiceInterface {
	return &MonitorService{
		client:   client,
		tracker:  trk,
		store:    store,
		agg:      agg,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		conf:     conf,
	}
}

// Tick runs one poll cycle. Called by the scheduler under its ops mutex, so
// ticks never overlap with the reaper or presence persistence.
func (s *MonitorService) Tick(ctx context.Context) {
	started := time.Now()
	snap := s.client.Fetch(ctx)
	s.updateStatus(snap)

	if !snap.Online {
		// Presence is retained across an offline snapshot. Lost players are
		// timed out by the reaper, not by a fetch hiccup.
		s.metrics.IncTicksTotal("offline")
		s.metrics.ObserveTickDuration(time.Since(started))
		s.logger.Warnf(providers.TypeTick, "Server unreachable, keeping %d tracked sessions", s.tracker.Count())
		return
	}

	now := snap.FetchedAt
	res := s.tracker.Reconcile(snap, now)

	for _, join := range res.Joined {
		s.persistJoin(ctx, join)
	}
	for _, stay := range res.Stayed {
		s.persistStay(ctx, stay)
	}
	s.PersistLeaves(ctx, res.Left)

	if err := s.agg.RecordPing(ctx, snap.Ping, s.tracker.Pings(), now); err != nil {
		s.metrics.IncStoreWriteFailures("ping_sample")
		s.logger.Errorf(providers.TypeTick, "Failed to record ping sample: %s", err)
	}

	peak := s.tracker.Count()
	if snap.Clients > peak {
		peak = snap.Clients
	}
	stat := models.DailyStat{
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		PeakPlayers: peak,
		GeneratedAt: now,
	}
	if err := s.store.UpsertDailyStat(ctx, stat); err != nil {
		s.metrics.IncStoreWriteFailures("daily_stat")
		s.logger.Errorf(providers.TypeTick, "Failed to upsert daily stat: %s", err)
	}

	s.metrics.SetPlayersOnline(s.tracker.Count())
	s.metrics.IncTicksTotal("ok")
	s.metrics.ObserveTickDuration(time.Since(started))
	s.logger.Debugf(providers.TypeTick, "Tick done: %d online, %d joined, %d left",
		s.tracker.Count(), len(res.Joined), len(res.Left))
}

// persistJoin records the new session. Playtime starts at zero; the first
// interval is accrued on the next tick the player is still present.
func (s *MonitorService) persistJoin(ctx context.Context, join tracker.Join) {
	update := models.PlayerUpdate{
		Name:        join.Name,
		Identifiers: join.Identifiers,
		Ping:        join.Ping,
		Job:         join.Job,
		Role:        join.Role,
		SessionTime: 0,
		SeenAt:      join.At,
	}
	if err := s.store.UpsertPlayer(ctx, update); err != nil {
		s.metrics.IncStoreWriteFailures("player_upsert")
		s.logger.Errorf(providers.TypeTick, "Failed to upsert joining player %s: %s", join.Name, err)
		return
	}
	if err := s.store.IncrementSessions(ctx, join.Name); err != nil {
		s.metrics.IncStoreWriteFailures("session_increment")
		s.logger.Errorf(providers.TypeTick, "Failed to increment sessions for %s: %s", join.Name, err)
	}

	event := models.Event{
		Timestamp:  join.At,
		Type:       models.EventJoin,
		PlayerName: join.Name,
		Details: models.EventDetails{
			Ping:        join.Ping,
			Identifiers: join.Identifiers,
		},
	}
	if err := s.store.AppendEvent(ctx, event); err != nil {
		s.metrics.IncStoreWriteFailures("event_append")
		s.logger.Errorf(providers.TypeTick, "Failed to append join event for %s: %s", join.Name, err)
	}

	s.metrics.IncJoins()
	s.notifier.PlayerJoined(join)
}

// persistStay accrues one nominal poll interval of playtime.
func (s *MonitorService) persistStay(ctx context.Context, stay tracker.Stay) {
	update := models.PlayerUpdate{
		Name:        stay.Name,
		Identifiers: stay.Identifiers,
		Ping:        stay.Ping,
		Job:         stay.Job,
		Role:        stay.Role,
		SessionTime: int64(s.conf.Monitor.PollInterval.Seconds()),
		SeenAt:      stay.At,
	}
	if err := s.store.UpsertPlayer(ctx, update); err != nil {
		s.metrics.IncStoreWriteFailures("player_upsert")
		s.logger.Errorf(providers.TypeTick, "Failed to accrue playtime for %s: %s", stay.Name, err)
	}
}

// PersistLeaves writes leave events and, for departures observed on a live
// roster, flushes the sub-interval remainder of the session. Timed-out
// sessions get no remainder because the player may have been gone for the
// whole stale window.
func (s *MonitorService) PersistLeaves(ctx context.Context, leaves []tracker.Leave) {
	for _, leave := range leaves {
		event := models.Event{
			Timestamp:  leave.At,
			Type:       models.EventLeave,
			PlayerName: leave.Name,
			Details: models.EventDetails{
				SessionDuration: leave.SessionDuration,
				Reason:          leave.Reason,
			},
		}
		if err := s.store.AppendEvent(ctx, event); err != nil {
			s.metrics.IncStoreWriteFailures("event_append")
			s.logger.Errorf(providers.TypeTick, "Failed to append leave event for %s: %s", leave.Name, err)
		}

		if leave.Reason == models.ReasonDeparted && leave.RemainingAccrual > 0 {
			update := models.PlayerUpdate{
				Name:        leave.Name,
				Identifiers: leave.Identifiers,
				Ping:        leave.Ping,
				Job:         leave.Job,
				Role:        leave.Role,
				SessionTime: leave.RemainingAccrual,
				SeenAt:      leave.At,
			}
			if err := s.store.UpsertPlayer(ctx, update); err != nil {
				s.metrics.IncStoreWriteFailures("player_upsert")
				s.logger.Errorf(providers.TypeTick, "Failed to flush session remainder for %s: %s", leave.Name, err)
			}
		}

		s.metrics.IncLeaves(leave.Reason)
		s.notifier.PlayerLeft(leave)
	}
}

// Cleanup prunes aged rows and flags long-gone players inactive. Scheduled
// once per day.
func (s *MonitorService) Cleanup(ctx context.Context) {
	now := time.Now()

	pings, err := s.store.DeletePingSamplesBefore(ctx, now.AddDate(0, 0, -s.conf.Monitor.PingRetentionDays))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Ping sample cleanup failed: %s", err)
	}
	events, err := s.store.DeleteEventsBefore(ctx, now.AddDate(0, 0, -s.conf.Monitor.EventRetentionDays))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Event cleanup failed: %s", err)
	}
	inactive, err := s.store.MarkPlayersInactiveBefore(ctx, now.AddDate(0, 0, -s.conf.Monitor.InactiveAfterDays))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Inactive flagging failed: %s", err)
	}

	s.logger.Infof(providers.TypeApp, "Cleanup done: %d ping samples, %d events removed, %d players flagged inactive",
		pings, events, inactive)
}

// CurrentSnapshot returns the most recent snapshot, online or not. Nil until
// the first tick completes.
func (s *MonitorService) CurrentSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *MonitorService) ServerOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// updateStatus stores the snapshot and fires a notification on online/offline
// edges. The very first observation notifies only when the server is up.
func (s *MonitorService) updateStatus(snap *models.Snapshot) {
	s.mu.Lock()
	prev, seen := s.online, s.seenOnce
	s.snapshot = snap
	s.online = snap.Online
	s.seenOnce = true
	s.mu.Unlock()

	if seen && prev == snap.Online {
		return
	}
	if !seen && !snap.Online {
		return
	}
	if snap.Online {
		s.logger.Infof(providers.TypeApp, "Server online: %s (%d/%d)", snap.Hostname, snap.Clients, snap.MaxClients)
	} else {
		s.logger.Warnf(providers.TypeApp, "Server went offline")
	}
	s.notifier.ServerStatusChanged(snap.Online, snap.Hostname, snap.Clients, snap.MaxClients)
}
