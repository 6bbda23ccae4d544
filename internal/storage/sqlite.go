package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"opensky_ingest/internal/states"
)

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string // Database file path, or ":memory:" for an in-memory store.
}

// SQLiteStore is a file-backed Store. It is the default backend and the
// drop-in replacement for a local analytical database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the configured path,
// creating the parent directory if needed. An empty path selects ":memory:".
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Init drops any existing states_raw table and creates a fresh one. Prior
// rows are lost; each run starts clean.
func (s *SQLiteStore) Init(ctx context.Context) error {
	schema := `
	DROP TABLE IF EXISTS states_raw;

	CREATE TABLE states_raw (
		snapshot_time   INTEGER,
		icao24          TEXT,
		callsign        TEXT,
		origin_country  TEXT,
		time_position   INTEGER,
		last_contact    INTEGER,
		longitude       REAL,
		latitude        REAL,
		baro_altitude   REAL,
		on_ground       BOOLEAN,
		velocity        REAL,
		true_track      REAL,
		vertical_rate   REAL,
		geo_altitude    REAL,
		squawk          TEXT,
		spi             BOOLEAN,
		position_source INTEGER
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return &WriteError{Op: "init", Err: err}
	}
	return nil
}

// InsertStates appends all rows inside one transaction and returns the total
// row count afterward. An empty slice performs no write.
func (s *SQLiteStore) InsertStates(ctx context.Context, rows []states.Row) (int64, error) {
	if len(rows) == 0 {
		return s.Count(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(states.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO states_raw (%s) VALUES (%s)",
		strings.Join(states.Columns, ", "), placeholders,
	))
	if err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(r)...); err != nil {
			return 0, &WriteError{Op: "insert", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	return s.Count(ctx)
}

// Count returns the total number of rows in states_raw.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM states_raw").Scan(&count)
	if err != nil {
		return 0, &WriteError{Op: "count", Err: err}
	}
	return count, nil
}
