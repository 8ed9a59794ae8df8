package storage

import (
	"context"
	"fmt"
	"time"

	"fivemon/internal/models"
)

const dateLayout = "2006-01-02"

// UpsertDailyStat keeps exactly one row per calendar date. The peak only ever
// grows within a day.
func (s *Store) UpsertDailyStat(ctx context.Context, stat models.DailyStat) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_stats (date, peak_players, generated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			peak_players = MAX(peak_players, excluded.peak_players),
			generated_at = excluded.generated_at`,
		stat.Date.Format(dateLayout), stat.PeakPlayers, stat.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

func (s *Store) GetDailyStats(ctx context.Context, since time.Time) ([]models.DailyStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, peak_players, generated_at FROM daily_stats
		 WHERE date >= ? ORDER BY date ASC`, since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []models.DailyStat
	for rows.Next() {
		var stat models.DailyStat
		var date string
		if err := rows.Scan(&date, &stat.PeakPlayers, &stat.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stat.Date, _ = time.Parse(dateLayout, date)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM players),
		        (SELECT COUNT(*) FROM events),
		        (SELECT COUNT(*) FROM ping_samples)`).
		Scan(&c.Players, &c.Events, &c.PingSamples)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}
