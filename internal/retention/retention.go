// Package retention prunes old learning events on a daily schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/store"
)

// purgeTimeout bounds a single purge run.
const purgeTimeout = 5 * time.Minute

// Pruner deletes learning events older than the configured TTL.
type Pruner struct {
	events    store.EventStore
	ttl       time.Duration
	runAt     string
	now       func() time.Time
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// NewPruner creates a pruner. It does nothing until Start is called.
func NewPruner(events store.EventStore, cfg config.RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		events:    events,
		ttl:       time.Duration(cfg.EventTTLDays) * 24 * time.Hour,
		runAt:     cfg.RunAt,
		now:       time.Now,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger.With(slog.String("component", "retention")),
	}
}

// Enabled reports whether a TTL is configured.
func (p *Pruner) Enabled() bool {
	return p.ttl > 0
}

// Start schedules the daily purge and returns immediately. With no TTL
// configured it only logs.
func (p *Pruner) Start() error {
	if !p.Enabled() {
		p.logger.Info("event retention disabled")
		return nil
	}

	_, err := p.scheduler.Every(1).Day().At(p.runAt).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		_, _ = p.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule event retention at %q: %w", p.runAt, err)
	}

	p.scheduler.StartAsync()
	p.logger.Info("event retention scheduled",
		slog.String("run_at", p.runAt),
		slog.Duration("ttl", p.ttl))
	return nil
}

// Stop halts the scheduler. A purge already running is not interrupted.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// RunOnce deletes every event older than the TTL and returns how many were removed.
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	if !p.Enabled() {
		return 0, nil
	}

	cutoff := p.now().UTC().Add(-p.ttl)
	removed, err := p.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("event retention failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, err
	}

	p.logger.Info("pruned learning events",
		slog.Int64("removed", removed),
		slog.Time("cutoff", cutoff))
	return removed, nil
}
