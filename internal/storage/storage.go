// Package storage provides durable persistence for normalized aircraft state
// rows. Three backends are supported: a file-backed SQLite store (the
// default), ClickHouse for analytics workloads, and PostgreSQL.
package storage

import (
	"context"
	"fmt"

	"opensky_ingest/internal/states"
)

// Backend names accepted by Open.
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
	BackendPostgres   = "postgres"
)

// Config holds connection settings for all supported backends. Only the
// section matching Backend is used.
type Config struct {
	Backend    string
	SQLite     SQLiteConfig
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local settings: a
// SQLite file under data/.
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		SQLite: SQLiteConfig{
			Path: "data/opensky.db",
		},
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "opensky",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "opensky",
			User:     "opensky",
			Password: "opensky",
		},
	}
}

// WriteError reports a storage-layer failure during table initialization or a
// bulk insert. No partial-commit recovery is attempted; the caller must treat
// the batch as lost.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store is the durable home of normalized state rows.
//
// Init is destructive: it drops any existing states_raw table and creates a
// fresh one, so each run starts clean. InsertStates appends all rows in one
// bulk operation and returns the table's total row count afterward; an empty
// slice performs no write and returns the current count.
type Store interface {
	Init(ctx context.Context) error
	InsertStates(ctx context.Context, rows []states.Row) (int64, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Open connects to the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return OpenSQLite(cfg.SQLite)
	case BackendClickHouse:
		return OpenClickHouse(ctx, cfg.ClickHouse)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// rowArgs flattens a row into insert arguments ordered like states.Columns.
// Nil pointers become SQL NULLs.
func rowArgs(r states.Row) []any {
	return []any{
		r.SnapshotTime,
		r.Icao24,
		r.Callsign,
		r.OriginCountry,
		r.TimePosition,
		r.LastContact,
		r.Longitude,
		r.Latitude,
		r.BaroAltitude,
		r.OnGround,
		r.Velocity,
		r.TrueTrack,
		r.VerticalRate,
		r.GeoAltitude,
		r.Squawk,
		r.SPI,
		r.PositionSource,
	}
}
