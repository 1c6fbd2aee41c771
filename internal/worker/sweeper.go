// Package worker runs the out-of-band session sweep: expiring stale pending
// events and decaying NPC trust as simulated time passes.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/engine"
)

// Sweeper periodically walks all live sessions. For each one it expires
// pending events older than EventMaxAge and multiplies NPC trust by
// DecayFactor. A factor of 1 disables decay.
type Sweeper struct {
	store       storage.SessionStore
	logger      *slog.Logger
	interval    time.Duration
	eventMaxAge time.Duration
	decayFactor float64
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store storage.SessionStore, logger *slog.Logger, interval, eventMaxAge time.Duration, decayFactor float64) *Sweeper {
	return &Sweeper{
		store:       store,
		logger:      logger,
		interval:    interval,
		eventMaxAge: eventMaxAge,
		decayFactor: decayFactor,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) error {
	sw.logger.Info("Sweeper starting",
		"interval", sw.interval,
		"event_max_age", sw.eventMaxAge,
		"decay_factor", sw.decayFactor)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("Sweeper shutting down")
			return nil
		case <-ticker.C:
			if err := sw.SweepOnce(ctx); err != nil {
				sw.logger.Error("Sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce processes every live session a single time. Per-session failures
// are logged and skipped so one bad row cannot stall the sweep.
func (sw *Sweeper) SweepOnce(ctx context.Context) error {
	ids, err := sw.store.ListSessionIDs(ctx)
	if err != nil {
		return err
	}

	swept, expired := 0, 0
	for _, id := range ids {
		s, err := sw.store.LoadSession(ctx, id)
		if err != nil {
			sw.logger.Warn("Failed to load session during sweep", "id", id, "error", err)
			continue
		}

		updated, n := engine.ExpireStale(*s, sw.eventMaxAge, time.Now())
		updated.NPCs = updated.NPCs.Decay(sw.decayFactor)

		if err := sw.store.SaveSession(ctx, &updated); err != nil {
			sw.logger.Warn("Failed to save session during sweep", "id", id, "error", err)
			continue
		}
		swept++
		expired += n
	}

	sw.logger.Info("Sweep complete", "sessions", swept, "events_expired", expired)
	return nil
}
