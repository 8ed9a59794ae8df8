package tracker

import (
	"sort"
	"sync"
	"time"

	"fivemon/internal/models"
	"fivemon/internal/providers"
	"fivemon/internal/structures"
)

// Join describes a player first observed in the current snapshot.
type Join struct {
	Name        string
	Ping        int
	Identifiers map[string]string
	Job         string
	Role        string
	At          time.Time
}

// Leave describes a session that ended, either because the player vanished
// from the roster (departed) or because the reaper timed it out.
type Leave struct {
	Name             string
	Ping             int
	Identifiers      map[string]string
	Job              string
	Role             string
	SessionDuration  int64
	RemainingAccrual int64
	Reason           string
	At               time.Time
}

// Stay describes a player present in both the previous and current snapshot;
// one nominal poll interval is accrued for it.
type Stay struct {
	Name        string
	Ping        int
	Identifiers map[string]string
	Job         string
	Role        string
	At          time.Time
}

// Result is the outcome of one reconcile pass.
type Result struct {
	Joined []Join
	Stayed []Stay
	Left   []Leave
}

// Tracker owns the in-memory presence map. All mutation happens under one
// mutex; Reconcile and Reap therefore never interleave.
type Tracker struct {
	mu       sync.Mutex
	players  map[string]*models.TrackedPresence
	interval time.Duration
	logger   providers.Logger
}

func NewTracker(conf *structures.Config, logger providers.Logger) *Tracker {
	return &Tracker{
		players:  make(map[string]*models.TrackedPresence),
		interval: conf.Monitor.PollInterval,
		logger:   logger,
	}
}

// Reconcile diffs the snapshot roster against tracked presence and mutates
// the presence map accordingly. An offline snapshot is treated as a transient
// hiccup: nothing is cleared, only the reaper times sessions out.
func (t *Tracker) Reconcile(snap *models.Snapshot, now time.Time) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res Result
	if !snap.Online {
		return res
	}

	current := snap.RosterNames()
	for _, entry := range snap.Roster {
		if entry.Name == "" {
			continue
		}

		p, tracked := t.players[entry.Name]
		if !tracked {
			t.players[entry.Name] = &models.TrackedPresence{
				LastSeenAt:       now,
				LastPing:         entry.Ping,
				Identifiers:      entry.Identifiers,
				Job:              entry.Job,
				Role:             entry.Role,
				SessionStartedAt: now,
			}
			res.Joined = append(res.Joined, Join{
				Name:        entry.Name,
				Ping:        entry.Ping,
				Identifiers: entry.Identifiers,
				Job:         entry.Job,
				Role:        entry.Role,
				At:          now,
			})
			t.logger.Infof(providers.TypeTick, "Player joined: %s", entry.Name)
			continue
		}

		p.LastSeenAt = now
		p.LastPing = entry.Ping
		p.Identifiers = entry.Identifiers
		p.Job = entry.Job
		p.Role = entry.Role
		res.Stayed = append(res.Stayed, Stay{
			Name:        entry.Name,
			Ping:        entry.Ping,
			Identifiers: entry.Identifiers,
			Job:         entry.Job,
			Role:        entry.Role,
			At:          now,
		})
	}

	for name, p := range t.players {
		if _, online := current[name]; online {
			continue
		}
		res.Left = append(res.Left, t.closeSession(name, p, now, models.ReasonDeparted))
	}

	return res
}

// Reap force-closes sessions whose last sighting predates now-staleThreshold.
// It shares the reconcile mutex, so it never races a tick on the same name.
func (t *Tracker) Reap(now time.Time, staleThreshold time.Duration) []Leave {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-staleThreshold)
	var reaped []Leave
	for name, p := range t.players {
		if !p.LastSeenAt.Before(cutoff) {
			continue
		}
		reaped = append(reaped, t.closeSession(name, p, now, models.ReasonTimeout))
	}
	if len(reaped) > 0 {
		t.logger.Infof(providers.TypeTick, "Reaped %d stale sessions", len(reaped))
	}
	return reaped
}

// closeSession must be called with the mutex held.
func (t *Tracker) closeSession(name string, p *models.TrackedPresence, now time.Time, reason string) Leave {
	duration := int64(now.Sub(p.SessionStartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	interval := int64(t.interval.Seconds())
	var remaining int64
	if interval > 0 {
		remaining = duration % interval
	}

	leave := Leave{
		Name:             name,
		Ping:             p.LastPing,
		Identifiers:      p.Identifiers,
		Job:              p.Job,
		Role:             p.Role,
		SessionDuration:  duration,
		RemainingAccrual: remaining,
		Reason:           reason,
		At:               now,
	}
	delete(t.players, name)
	t.logger.Infof(providers.TypeTick, "Player left: %s (session: %ds, %s)", name, duration, reason)
	return leave
}

// Count returns the number of currently tracked players.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// Pings returns the positive per-player pings of the tracked roster.
func (t *Tracker) Pings() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pings := make([]int, 0, len(t.players))
	for _, p := range t.players {
		if p.LastPing > 0 {
			pings = append(pings, p.LastPing)
		}
	}
	return pings
}

// OnlinePlayers returns a copy of the tracked sessions with running
// durations, longest session first.
func (t *Tracker) OnlinePlayers(now time.Time) []models.OnlinePlayer {
	t.mu.Lock()
	defer t.mu.Unlock()

	online := make([]models.OnlinePlayer, 0, len(t.players))
	for name, p := range t.players {
		duration := int64(now.Sub(p.SessionStartedAt).Seconds())
		if duration < 0 {
			duration = 0
		}
		online = append(online, models.OnlinePlayer{
			Name:            name,
			Ping:            p.LastPing,
			Job:             p.Job,
			Role:            p.Role,
			OnlineSince:     p.SessionStartedAt,
			SessionDuration: duration,
		})
	}
	sort.Slice(online, func(i, j int) bool {
		return online[i].SessionDuration > online[j].SessionDuration
	})
	return online
}

// Session returns the session start of a tracked player, if any.
func (t *Tracker) Session(name string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.players[name]
	if !ok {
		return time.Time{}, false
	}
	return p.SessionStartedAt, true
}

// State exports a deep copy of the presence map for persistence.
func (t *Tracker) State() models.PresenceState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := models.PresenceState{
		SavedAt: time.Now().UTC(),
		Players: make(map[string]models.TrackedPresence, len(t.players)),
	}
	for name, p := range t.players {
		state.Players[name] = *p
	}
	return state
}

// Restore replaces the presence map with a previously saved state. Restored
// sessions keep their original start times.
func (t *Tracker) Restore(state models.PresenceState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.players = make(map[string]*models.TrackedPresence, len(state.Players))
	for name, p := range state.Players {
		cp := p
		t.players[name] = &cp
	}
}
