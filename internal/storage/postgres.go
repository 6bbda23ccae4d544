package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opensky_ingest/internal/states"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresStore persists state rows in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL and verifies it with a
// ping.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Init drops any existing states_raw table and creates a fresh one.
func (s *PostgresStore) Init(ctx context.Context) error {
	schema := `
	DROP TABLE IF EXISTS states_raw;

	CREATE TABLE states_raw (
		snapshot_time   BIGINT,
		icao24          TEXT,
		callsign        TEXT,
		origin_country  TEXT,
		time_position   BIGINT,
		last_contact    BIGINT,
		longitude       DOUBLE PRECISION,
		latitude        DOUBLE PRECISION,
		baro_altitude   DOUBLE PRECISION,
		on_ground       BOOLEAN,
		velocity        DOUBLE PRECISION,
		true_track      DOUBLE PRECISION,
		vertical_rate   DOUBLE PRECISION,
		geo_altitude    DOUBLE PRECISION,
		squawk          TEXT,
		spi             BOOLEAN,
		position_source INTEGER
	);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return &WriteError{Op: "init", Err: err}
	}
	return nil
}

// InsertStates appends all rows via COPY inside one transaction and returns
// the total row count afterward.
func (s *PostgresStore) InsertStates(ctx context.Context, rows []states.Row) (int64, error) {
	if len(rows) == 0 {
		return s.Count(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	source := make([][]any, 0, len(rows))
	for _, r := range rows {
		source = append(source, rowArgs(r))
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"states_raw"}, states.Columns, pgx.CopyFromRows(source))
	if err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	return s.Count(ctx)
}

// Count returns the total number of rows in states_raw.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM states_raw").Scan(&count)
	if err != nil {
		return 0, &WriteError{Op: "count", Err: err}
	}
	return count, nil
}
