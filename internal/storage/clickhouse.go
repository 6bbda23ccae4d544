package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"opensky_ingest/internal/states"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseStore persists state rows in ClickHouse for analytics workloads.
type ClickHouseStore struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse and verifies it with a
// ping.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

// Init drops any existing states_raw table and creates a fresh one.
func (s *ClickHouseStore) Init(ctx context.Context) error {
	queries := []string{
		`DROP TABLE IF EXISTS states_raw`,

		`CREATE TABLE states_raw (
			snapshot_time   Int64,
			icao24          String,
			callsign        Nullable(String),
			origin_country  String,
			time_position   Nullable(Int64),
			last_contact    Nullable(Int64),
			longitude       Nullable(Float64),
			latitude        Nullable(Float64),
			baro_altitude   Nullable(Float64),
			on_ground       Nullable(Bool),
			velocity        Nullable(Float64),
			true_track      Nullable(Float64),
			vertical_rate   Nullable(Float64),
			geo_altitude    Nullable(Float64),
			squawk          Nullable(String),
			spi             Nullable(Bool),
			position_source Nullable(Int64)
		)
		ENGINE = MergeTree()
		ORDER BY (snapshot_time, icao24)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := s.conn.Exec(ctx, q); err != nil {
			return &WriteError{Op: "init", Err: err}
		}
	}
	return nil
}

// InsertStates appends all rows as one prepared batch and returns the total
// row count afterward. The batch send is ClickHouse's all-or-nothing unit.
func (s *ClickHouseStore) InsertStates(ctx context.Context, rows []states.Row) (int64, error) {
	if len(rows) == 0 {
		return s.Count(ctx)
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO states_raw (%s)", strings.Join(states.Columns, ", "),
	))
	if err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	for _, r := range rows {
		if err := batch.Append(rowArgs(r)...); err != nil {
			return 0, &WriteError{Op: "insert", Err: err}
		}
	}

	if err := batch.Send(); err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	return s.Count(ctx)
}

// Count returns the total number of rows in states_raw.
func (s *ClickHouseStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, "SELECT count() FROM states_raw")
	if err := row.Scan(&count); err != nil {
		return 0, &WriteError{Op: "count", Err: err}
	}
	return int64(count), nil
}
