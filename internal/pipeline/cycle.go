// Package pipeline orchestrates the collect-match-notify cycle and the
// periodic watcher that drives it. The ordering guarantee lives here: a
// relevance key is appended to the ledger only after its notification has
// been attempted, and a collection failure aborts the cycle before any
// ledger write, so a flaky fetch can never mark announcements as seen.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/ledger"
	"github.com/couchcryptid/island-notify/internal/match"
	"github.com/couchcryptid/island-notify/internal/observability"
	"github.com/couchcryptid/island-notify/internal/route"
	"github.com/couchcryptid/island-notify/internal/source"
	"github.com/google/uuid"
)

// Notifier delivers one notification job to subscribers.
type Notifier interface {
	Send(ctx context.Context, job domain.Job) error
}

// AuditWriter records cycle events on an external stream. Implementations
// must tolerate being called once per new relevance and once per dispatch.
type AuditWriter interface {
	Record(ctx context.Context, event AuditEvent) error
}

// AuditEvent is one audit stream record.
type AuditEvent struct {
	RunID      string `json:"run_id"`
	Source     string `json:"source"`
	Kind       string `json:"kind"` // "relevance" or "dispatch"
	Key        string `json:"key,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Recipients int    `json:"recipients,omitempty"`
	Error      string `json:"error,omitempty"`
	At         string `json:"at"`
}

// Cycle runs one complete pass for a single source.
type Cycle struct {
	matcher   *match.Matcher
	router    *route.Router
	ledgerDir string
	notifier  Notifier
	audit     AuditWriter // nil disables auditing
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Cycle over the loaded geography. audit may be nil.
func New(index *geo.Index, contacts geo.Contacts, ledgerDir string, notifier Notifier, audit AuditWriter, logger *slog.Logger, metrics *observability.Metrics) *Cycle {
	return &Cycle{
		matcher:   match.New(index),
		router:    route.New(index, contacts),
		ledgerDir: ledgerDir,
		notifier:  notifier,
		audit:     audit,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes one cycle for src: collect entries, match them against the
// geography, drop relevances already in the ledger, route and dispatch the
// rest, then record them. Dispatch failures are logged and counted but do
// not prevent recording; the at-most-once guarantee wins over redelivery.
func (c *Cycle) Run(ctx context.Context, src source.Source) error {
	start := time.Now()
	runID := uuid.NewString()
	log := c.logger.With("source", src.Name(), "run_id", runID)

	entries, err := src.Collect(ctx)
	if err != nil {
		c.metrics.CollectErrors.WithLabelValues(src.Name()).Inc()
		return fmt.Errorf("collect %s: %w", src.Name(), err)
	}
	c.metrics.EntriesCollected.WithLabelValues(src.Name()).Add(float64(len(entries)))

	led := ledger.New(c.ledgerDir, src.Name())
	snap, err := led.Load()
	if err != nil {
		return err
	}

	fresh := c.matchFresh(ctx, log, runID, src, entries, snap)
	c.metrics.RelevancesNew.WithLabelValues(src.Name()).Add(float64(len(fresh)))

	if len(fresh) > 0 {
		c.dispatch(ctx, log, runID, src, fresh)

		keys := make([]string, len(fresh))
		for i, rel := range fresh {
			keys[i] = rel.Key()
		}
		if err := led.Append(keys); err != nil {
			return err
		}
	}

	c.metrics.CycleDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	c.metrics.LastCycleOK.WithLabelValues(src.Name()).SetToCurrentTime()
	log.Info("cycle complete", "entries", len(entries), "new_relevances", len(fresh))
	return nil
}

// matchFresh matches every collected entry and keeps the relevances not yet
// in the snapshot. Adding to the snapshot as it goes collapses the same
// relevance surfacing from two entries in one pass.
func (c *Cycle) matchFresh(ctx context.Context, log *slog.Logger, runID string, src source.Source, entries []domain.Entry, snap *ledger.Snapshot) []domain.Relevance {
	var fresh []domain.Relevance
	for _, e := range entries {
		rels := c.matcher.Match(src.EntryKey(e), e, src.Scope())
		c.metrics.RelevancesMatched.WithLabelValues(src.Name()).Add(float64(len(rels)))

		for _, rel := range rels {
			key := rel.Key()
			if snap.Known(key) {
				continue
			}
			snap.Add(key)
			fresh = append(fresh, rel)
			log.Info("new relevance", "key", key)
			c.record(ctx, log, AuditEvent{RunID: runID, Source: src.Name(), Kind: "relevance", Key: key})
		}
	}
	return fresh
}

// dispatch routes the fresh relevances into jobs and hands each to the
// notifier. Jobs without recipients are skipped; their relevances are still
// recorded by the caller.
func (c *Cycle) dispatch(ctx context.Context, log *slog.Logger, runID string, src source.Source, fresh []domain.Relevance) {
	for _, job := range c.router.Route(fresh, src.Message) {
		if len(job.Recipients) == 0 {
			log.Warn("job has no recipients, skipping", "subject", job.Subject)
			continue
		}

		event := AuditEvent{RunID: runID, Source: src.Name(), Kind: "dispatch", Subject: job.Subject, Recipients: len(job.Recipients)}
		if err := c.notifier.Send(ctx, job); err != nil {
			log.Error("notification send failed", "subject", job.Subject, "error", err)
			c.metrics.SendErrors.WithLabelValues(src.Name()).Inc()
			event.Error = err.Error()
		} else {
			c.metrics.JobsDispatched.WithLabelValues(src.Name()).Inc()
		}
		c.record(ctx, log, event)
	}
}

// record writes an audit event when auditing is enabled. Audit failures are
// logged and otherwise ignored.
func (c *Cycle) record(ctx context.Context, log *slog.Logger, event AuditEvent) {
	if c.audit == nil {
		return
	}
	event.At = domain.Clock().Now().UTC().Format(time.RFC3339)
	if err := c.audit.Record(ctx, event); err != nil {
		log.Warn("audit record failed", "kind", event.Kind, "error", err)
	}
}
