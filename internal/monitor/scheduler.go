package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"github.com/roylee0704/gron/xtime"

	"fivemon/internal/monitor/interfaces"
	"fivemon/internal/providers"
	"fivemon/internal/services"
	"fivemon/internal/structures"
	"fivemon/internal/tracker"
)

// Scheduler owns the daemon's periodic work: the poll tick, the stale-session
// reaper, presence persistence and the daily retention sweep. Every job runs
// under one ops mutex, so no two jobs ever touch the tracker concurrently.
type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	service   services.MonitorServiceInterface
	tracker   *tracker.Tracker
	stateFile *StateFile
	metrics   providers.MetricsProviderInterface
	cron      *gron.Cron
	opsMu     sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Monitor.PollInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Monitor.PollInterval)
		defer cancel()
		s.service.Tick(ctx)
	})

	s.cron.AddFunc(gron.Every(s.config.Monitor.ReaperInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		reaped := s.tracker.Reap(time.Now(), s.config.Monitor.StaleThreshold)
		if len(reaped) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.service.PersistLeaves(ctx, reaped)
	})

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		started := time.Now()
		err := s.stateFile.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting presence: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(started))
		s.logger.Infof(providers.TypeApp, "Persisted presence to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(1*xtime.Day).At(fmt.Sprintf("%02d:00", s.config.Monitor.CleanupHour)), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.logger.Infof(providers.TypeApp, "Running daily cleanup...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.service.Cleanup(ctx)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	err := s.stateFile.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting presence to file...")
	err := s.stateFile.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting presence: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.MonitorServiceInterface, trk *tracker.Tracker, stateFile *StateFile, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		service:   service,
		tracker:   trk,
		stateFile: stateFile,
		metrics:   metrics,
	}
}
