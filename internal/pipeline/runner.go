// Package pipeline drives the snapshot ingestion loop: repeated
// fetch-normalize-write cycles against a store initialized once at start.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"opensky_ingest/internal/opensky"
	"opensky_ingest/internal/states"
	"opensky_ingest/internal/storage"
)

// Fetcher produces one snapshot per call. Satisfied by *opensky.Client.
type Fetcher interface {
	Fetch(ctx context.Context) (*opensky.Snapshot, error)
}

// Config controls a run.
type Config struct {
	Cycles int           // Number of fetch cycles. Zero performs only initialization.
	Delay  time.Duration // Delay between cycles. Not applied after the last one.
}

// Stats accumulates per-run accounting across all cycles.
type Stats struct {
	Cycles    int   // Cycles completed.
	Fetched   int   // Raw state records fetched.
	Inserted  int   // Normalized rows written.
	Skipped   int   // Malformed records dropped.
	TotalRows int64 // Store row count after the last completed write.
}

// Runner executes fetch-normalize-write cycles strictly in sequence. The
// first hard error (fetch, validation or write) terminates the run; remaining
// cycles never execute.
type Runner struct {
	fetcher Fetcher
	store   storage.Store
	cfg     Config
	log     *logrus.Logger
	sleep   func(time.Duration)
}

// NewRunner creates a runner. A nil logger selects the logrus standard
// logger.
func NewRunner(fetcher Fetcher, store storage.Store, cfg Config, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Run initializes the store once, then performs the configured number of
// cycles, sleeping between successive cycles. It returns the accounting for
// the work completed, even when an error cuts the run short.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if r.cfg.Cycles < 0 {
		return stats, fmt.Errorf("cycle count must not be negative: %d", r.cfg.Cycles)
	}

	r.log.WithFields(logrus.Fields{
		"cycles": r.cfg.Cycles,
		"delay":  r.cfg.Delay.String(),
	}).Info("starting snapshot run")

	if err := r.store.Init(ctx); err != nil {
		return stats, err
	}

	for i := 0; i < r.cfg.Cycles; i++ {
		r.log.WithField("cycle", fmt.Sprintf("%d/%d", i+1, r.cfg.Cycles)).Info("fetching snapshot")

		snap, err := r.fetcher.Fetch(ctx)
		if err != nil {
			return stats, err
		}

		rows, skipped, err := states.Normalize(snap.Time, snap.States)
		if err != nil {
			return stats, err
		}
		if skipped > 0 {
			r.log.WithField("skipped", skipped).Warn("dropped malformed state records")
		}

		total, err := r.store.InsertStates(ctx, rows)
		if err != nil {
			return stats, err
		}

		stats.Cycles++
		stats.Fetched += len(snap.States)
		stats.Inserted += len(rows)
		stats.Skipped += skipped
		stats.TotalRows = total

		r.log.WithFields(logrus.Fields{
			"cycle":      fmt.Sprintf("%d/%d", i+1, r.cfg.Cycles),
			"fetched":    len(snap.States),
			"inserted":   len(rows),
			"total_rows": total,
		}).Info("snapshot cycle complete")

		if i < r.cfg.Cycles-1 {
			r.log.WithField("delay", r.cfg.Delay.String()).Info("sleeping before next snapshot")
			r.sleep(r.cfg.Delay)
		}
	}

	r.log.WithFields(logrus.Fields{
		"cycles":     stats.Cycles,
		"total_rows": stats.TotalRows,
	}).Info("snapshot run finished")

	return stats, nil
}
