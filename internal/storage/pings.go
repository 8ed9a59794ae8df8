package storage

import (
	"context"
	"fmt"
	"time"

	"fivemon/internal/models"
)

func (s *Store) AppendPingSample(ctx context.Context, sample models.PingSample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ping_samples (timestamp, low, avg, high, server_ping)
		 VALUES (?, ?, ?, ?, ?)`,
		sample.Timestamp, sample.Low, sample.Avg, sample.High, sample.ServerPing)
	if err != nil {
		return fmt.Errorf("failed to append ping sample: %w", err)
	}
	return nil
}

// QueryPingStats averages the per-sample low/avg/high over the window and
// returns nil when the window holds no samples. Callers must treat nil as
// "no data", not as zero ping.
func (s *Store) QueryPingStats(ctx context.Context, since time.Time) (*models.PingStats, error) {
	var stats models.PingStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(low), 0), COALESCE(AVG(avg), 0), COALESCE(AVG(high), 0),
		        COALESCE(MIN(low), 0), COALESCE(MAX(high), 0), COUNT(*)
		 FROM ping_samples WHERE timestamp >= ?`, since).
		Scan(&stats.Low, &stats.Avg, &stats.High, &stats.Min, &stats.Max, &stats.Samples)
	if err != nil {
		return nil, fmt.Errorf("failed to query ping stats: %w", err)
	}
	if stats.Samples == 0 {
		return nil, nil
	}
	return &stats, nil
}

func (s *Store) CountPingSamples(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ping_samples WHERE timestamp >= ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ping samples: %w", err)
	}
	return count, nil
}

func (s *Store) DeletePingSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ping_samples WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old ping samples: %w", err)
	}
	return res.RowsAffected()
}
