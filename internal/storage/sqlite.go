package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"fivemon/internal/structures"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
    name TEXT PRIMARY KEY,
    identifiers TEXT NOT NULL DEFAULT '{}',
    first_seen TIMESTAMP NOT NULL,
    last_seen TIMESTAMP NOT NULL,
    playtime INTEGER NOT NULL DEFAULT 0,
    total_sessions INTEGER NOT NULL DEFAULT 0,
    last_ping INTEGER NOT NULL DEFAULT 0,
    job TEXT NOT NULL DEFAULT 'civilian',
    role TEXT NOT NULL DEFAULT 'civilian',
    status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'inactive'))
);
CREATE INDEX IF NOT EXISTS idx_players_last_seen ON players(last_seen);
CREATE INDEX IF NOT EXISTS idx_players_playtime ON players(playtime);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    type TEXT NOT NULL CHECK(type IN ('join', 'leave')),
    player_name TEXT NOT NULL,
    ping INTEGER NOT NULL DEFAULT 0,
    identifiers TEXT NOT NULL DEFAULT '{}',
    session_duration INTEGER NOT NULL DEFAULT 0,
    reason TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_player ON events(player_name, timestamp);

CREATE TABLE IF NOT EXISTS ping_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    low REAL NOT NULL,
    avg REAL NOT NULL,
    high REAL NOT NULL,
    server_ping REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ping_samples_timestamp ON ping_samples(timestamp);

CREATE TABLE IF NOT EXISTS daily_stats (
    date TEXT PRIMARY KEY,
    peak_players INTEGER NOT NULL DEFAULT 0,
    generated_at TIMESTAMP NOT NULL
);
`

// Store implements StoreInterface on SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(conf *structures.Config) (StoreInterface, error) {
	return Open(conf.Database.Path)
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The poll tick, reaper and API readers share this handle; WAL keeps
	// readers from blocking the tick's writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
