// Command opensky_ingest polls the OpenSky Network state API and appends
// normalized state vectors to a durable table for later analysis.
//
// Usage:
//
//	opensky_ingest [options]
//
// Options:
//
//	-cycles N           Number of snapshots to fetch (default: 1, single-shot)
//	-sleep N            Seconds to wait between snapshots (default: 10)
//	-url URL            OpenSky endpoint (default: public /states/all)
//	-timeout N          Request timeout in seconds (default: 30)
//	-backend NAME       Storage backend: sqlite, clickhouse or postgres
//	                    (default: sqlite, env: OPENSKY_BACKEND)
//	-db PATH            SQLite database path (default: data/opensky.db, env: SQLITE_PATH)
//	-ch-host HOST       ClickHouse host (default: localhost, env: CLICKHOUSE_HOST)
//	-ch-port PORT       ClickHouse port (default: 9000, env: CLICKHOUSE_PORT)
//	-ch-database DB     ClickHouse database (default: opensky, env: CLICKHOUSE_DATABASE)
//	-ch-user USER       ClickHouse user (default: default, env: CLICKHOUSE_USER)
//	-ch-password PASS   ClickHouse password (env: CLICKHOUSE_PASSWORD)
//	-pg-host HOST       PostgreSQL host (default: localhost, env: POSTGRES_HOST)
//	-pg-port PORT       PostgreSQL port (default: 5432, env: POSTGRES_PORT)
//	-pg-database DB     PostgreSQL database (default: opensky, env: POSTGRES_DATABASE)
//	-pg-user USER       PostgreSQL user (default: opensky, env: POSTGRES_USER)
//	-pg-password PASS   PostgreSQL password (default: opensky, env: POSTGRES_PASSWORD)
//
// The run starts by dropping and recreating the states_raw table, then
// performs the configured number of fetch cycles. The first fetch, validation
// or write error aborts the run.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"opensky_ingest/internal/opensky"
	"opensky_ingest/internal/pipeline"
	"opensky_ingest/internal/storage"
)

func main() {
	defaults := storage.DefaultConfig()

	cycles := flag.Int("cycles", 1, "Number of snapshots to fetch")
	sleepSec := flag.Int("sleep", 10, "Seconds to wait between snapshots")
	url := flag.String("url", opensky.DefaultURL, "OpenSky endpoint URL")
	timeoutSec := flag.Int("timeout", 30, "Request timeout in seconds")

	backend := flag.String("backend", envOrDefault("OPENSKY_BACKEND", defaults.Backend), "Storage backend (sqlite, clickhouse, postgres)")
	dbPath := flag.String("db", envOrDefault("SQLITE_PATH", defaults.SQLite.Path), "SQLite database path")

	chHost := flag.String("ch-host", envOrDefault("CLICKHOUSE_HOST", defaults.ClickHouse.Host), "ClickHouse host")
	chPort := flag.Int("ch-port", envOrDefaultInt("CLICKHOUSE_PORT", defaults.ClickHouse.Port), "ClickHouse port")
	chDB := flag.String("ch-database", envOrDefault("CLICKHOUSE_DATABASE", defaults.ClickHouse.Database), "ClickHouse database")
	chUser := flag.String("ch-user", envOrDefault("CLICKHOUSE_USER", defaults.ClickHouse.User), "ClickHouse user")
	chPassword := flag.String("ch-password", envOrDefault("CLICKHOUSE_PASSWORD", defaults.ClickHouse.Password), "ClickHouse password")

	pgHost := flag.String("pg-host", envOrDefault("POSTGRES_HOST", defaults.Postgres.Host), "PostgreSQL host")
	pgPort := flag.Int("pg-port", envOrDefaultInt("POSTGRES_PORT", defaults.Postgres.Port), "PostgreSQL port")
	pgDB := flag.String("pg-database", envOrDefault("POSTGRES_DATABASE", defaults.Postgres.Database), "PostgreSQL database")
	pgUser := flag.String("pg-user", envOrDefault("POSTGRES_USER", defaults.Postgres.User), "PostgreSQL user")
	pgPassword := flag.String("pg-password", envOrDefault("POSTGRES_PASSWORD", defaults.Postgres.Password), "PostgreSQL password")

	flag.Parse()

	log := newLogger()
	ctx := context.Background()

	cfg := storage.Config{
		Backend: *backend,
		SQLite: storage.SQLiteConfig{
			Path: *dbPath,
		},
		ClickHouse: storage.ClickHouseConfig{
			Host:     *chHost,
			Port:     *chPort,
			Database: *chDB,
			User:     *chUser,
			Password: *chPassword,
		},
		Postgres: storage.PostgresConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			Database: *pgDB,
			User:     *pgUser,
			Password: *pgPassword,
		},
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage backend")
	}
	defer func() { _ = store.Close() }()

	client := opensky.NewClient(*url, time.Duration(*timeoutSec)*time.Second, log)

	runner := pipeline.NewRunner(client, store, pipeline.Config{
		Cycles: *cycles,
		Delay:  time.Duration(*sleepSec) * time.Second,
	}, log)

	stats, err := runner.Run(ctx)
	if err != nil {
		log.WithError(err).WithField("cycles_completed", stats.Cycles).Fatal("snapshot run failed")
	}

	log.WithFields(logrus.Fields{
		"cycles":     stats.Cycles,
		"fetched":    stats.Fetched,
		"inserted":   stats.Inserted,
		"skipped":    stats.Skipped,
		"total_rows": stats.TotalRows,
	}).Info("run complete")
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
