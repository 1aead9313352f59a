package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/observability"
	"github.com/couchcryptid/island-notify/internal/source"
)

// Watcher sweeps every source on a fixed interval until cancelled.
type Watcher struct {
	cycle    *Cycle
	sources  []source.Source
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewWatcher creates a Watcher driving cycle over sources every interval.
func NewWatcher(cycle *Cycle, sources []source.Source, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Watcher {
	return &Watcher{
		cycle:    cycle,
		sources:  sources,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a full sweep has completed with at least
// one successful cycle, or an error describing why the service is not yet
// ready.
func (w *Watcher) CheckReadiness(_ context.Context) error {
	if !w.ready.Load() {
		return errors.New("watcher has not completed a sweep yet")
	}
	return nil
}

// Run sweeps immediately, then on every tick, until the context is
// cancelled. One failing source never blocks the others.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started", "interval", w.interval, "sources", len(w.sources))
	w.metrics.WatcherRunning.Set(1)
	defer w.metrics.WatcherRunning.Set(0)

	w.sweep(ctx)

	ticker := domain.Clock().NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			w.sweep(ctx)
		}
	}
}

// sweep runs one cycle per source in registry order.
func (w *Watcher) sweep(ctx context.Context) {
	succeeded := 0
	for _, src := range w.sources {
		if ctx.Err() != nil {
			return
		}
		if err := w.cycle.Run(ctx, src); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("cycle failed", "source", src.Name(), "error", err)
			continue
		}
		succeeded++
	}
	if succeeded > 0 {
		w.ready.Store(true)
	}
}
