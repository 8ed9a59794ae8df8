package storage

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"fivemon/internal/models"
)

func (s *Store) AppendEvent(ctx context.Context, event models.Event) error {
	identifiers, err := json.Marshal(event.Details.Identifiers)
	if err != nil {
		return fmt.Errorf("failed to encode identifiers: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (timestamp, type, player_name, ping, identifiers, session_duration, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp, string(event.Type), event.PlayerName,
		event.Details.Ping, string(identifiers),
		event.Details.SessionDuration, event.Details.Reason)
	if err != nil {
		return fmt.Errorf("failed to append %s event for %s: %w", event.Type, event.PlayerName, err)
	}
	return nil
}

// QueryEvents returns events matching the filter in ascending time order,
// capped at limit. When the window holds more rows than the limit, the
// oldest ones win; replay-style consumers want the window from its start.
func (s *Store) QueryEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error) {
	return s.queryEvents(ctx, filter, `ORDER BY timestamp ASC, id ASC`, limit)
}

// RecentEvents returns the newest events matching the filter, oldest first
// within the result. When the log holds more rows than the limit, the newest
// ones win.
func (s *Store) RecentEvents(ctx context.Context, filter models.EventFilter, limit int) ([]models.Event, error) {
	events, err := s.queryEvents(ctx, filter, `ORDER BY timestamp DESC, id DESC`, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func (s *Store) queryEvents(ctx context.Context, filter models.EventFilter, order string, limit int) ([]models.Event, error) {
	query := `SELECT id, timestamp, type, player_name, ping, identifiers, session_duration, reason
		 FROM events WHERE 1=1`
	var args []any

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.PlayerName != "" {
		query += ` AND player_name = ?`
		args = append(args, filter.PlayerName)
	}
	if !filter.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		query += ` AND timestamp < ?`
		args = append(args, filter.Until)
	}
	query += ` ` + order + ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var typ, identifiers string
		if err := rows.Scan(&e.ID, &e.Timestamp, &typ, &e.PlayerName,
			&e.Details.Ping, &identifiers, &e.Details.SessionDuration, &e.Details.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = models.EventType(typ)
		if err := json.Unmarshal([]byte(identifiers), &e.Details.Identifiers); err != nil {
			e.Details.Identifiers = nil
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old events: %w", err)
	}
	return res.RowsAffected()
}
