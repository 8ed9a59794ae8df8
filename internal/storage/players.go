package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"fivemon/internal/models"
)

const playerColumns = `name, identifiers, first_seen, last_seen, playtime,
		total_sessions, last_ping, job, role, status`

// UpsertPlayer creates the record on first sight and otherwise refreshes
// metadata while incrementing playtime in place. The increment happens inside
// the single UPDATE, so concurrent upserts cannot lose time.
func (s *Store) UpsertPlayer(ctx context.Context, update models.PlayerUpdate) error {
	identifiers, err := json.Marshal(update.Identifiers)
	if err != nil {
		return fmt.Errorf("failed to encode identifiers: %w", err)
	}

	query := `
		INSERT INTO players (name, identifiers, first_seen, last_seen, playtime, last_ping, job, role, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'active')
		ON CONFLICT(name) DO UPDATE SET
			identifiers = excluded.identifiers,
			last_seen = excluded.last_seen,
			playtime = playtime + excluded.playtime,
			last_ping = excluded.last_ping,
			job = excluded.job,
			role = excluded.role,
			status = 'active'
	`

	job := update.Job
	if job == "" {
		job = models.DefaultJob
	}
	role := update.Role
	if role == "" {
		role = models.DefaultRole
	}

	_, err = s.db.ExecContext(ctx, query,
		update.Name, string(identifiers), update.SeenAt, update.SeenAt,
		update.SessionTime, update.Ping, job, role,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", update.Name, err)
	}
	return nil
}

// IncrementSessions bumps total_sessions by one; called on join events.
func (s *Store) IncrementSessions(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET total_sessions = total_sessions + 1 WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to increment sessions for %s: %w", name, err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, name string) (*models.PlayerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = ?`, name)
	return scanPlayer(row)
}

// SearchPlayers matches names partially, best playtime first.
func (s *Store) SearchPlayers(ctx context.Context, query string, limit int) ([]models.PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE name LIKE ? ORDER BY playtime DESC LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()
	return scanPlayers(rows)
}

func (s *Store) GetPlayersByPlaytime(ctx context.Context, limit int) ([]models.PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE playtime > 0 ORDER BY playtime DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query players by playtime: %w", err)
	}
	defer rows.Close()
	return scanPlayers(rows)
}

func (s *Store) CountActivePlayers(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE last_seen >= ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active players: %w", err)
	}
	return count, nil
}

func (s *Store) PlayerAggregates(ctx context.Context, since time.Time) (PlayerAggregates, error) {
	var agg PlayerAggregates
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(playtime), 0),
		        COALESCE(AVG(playtime), 0),
		        COALESCE(MAX(playtime), 0)
		 FROM players WHERE last_seen >= ?`, since).
		Scan(&agg.TotalPlayers, &agg.TotalPlaytime, &agg.AvgPlaytime, &agg.MaxPlaytime)
	if err != nil {
		return PlayerAggregates{}, fmt.Errorf("failed to aggregate players: %w", err)
	}
	return agg, nil
}

func (s *Store) MarkPlayersInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET status = 'inactive' WHERE last_seen < ? AND status != 'inactive'`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark players inactive: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*models.PlayerRecord, error) {
	var p models.PlayerRecord
	var identifiers string
	err := row.Scan(&p.Name, &identifiers, &p.FirstSeen, &p.LastSeen, &p.Playtime,
		&p.TotalSessions, &p.LastPing, &p.Job, &p.Role, &p.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	if err := json.Unmarshal([]byte(identifiers), &p.Identifiers); err != nil {
		p.Identifiers = map[string]string{}
	}
	return &p, nil
}

func scanPlayers(rows *sql.Rows) ([]models.PlayerRecord, error) {
	var players []models.PlayerRecord
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}
