package triage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scrubarr/internal/logging"
	"scrubarr/internal/queue"
	"scrubarr/internal/services"
)

// Backend is the queue surface a cycle drives.
type Backend interface {
	FetchQueue(ctx context.Context) ([]queue.Item, error)
	RefreshSeries(ctx context.Context, seriesID int) error
	DeleteQueueItems(ctx context.Context, ids []int, removeFromClient bool) error
}

// Options tunes a Cycle.
type Options struct {
	Rules  []Rule
	DryRun bool
	Logger *slog.Logger
	// Now overrides the clock used for Result timing.
	Now func() time.Time
}

// Cycle runs classify-and-act passes for one backend instance.
type Cycle struct {
	name    string
	backend Backend
	rules   []Rule
	dryRun  bool
	logger  *slog.Logger
	now     func() time.Time
}

// NewCycle builds a cycle for the named instance.
func NewCycle(name string, backend Backend, opts Options) *Cycle {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cycle{
		name:    name,
		backend: backend,
		rules:   rules,
		dryRun:  opts.DryRun,
		logger:  logging.NewComponentLogger(opts.Logger, "triage"),
		now:     now,
	}
}

// Name returns the instance name this cycle serves.
func (c *Cycle) Name() string {
	return c.name
}

// Result summarizes one cycle.
type Result struct {
	Instance string        `json:"instance"`
	CycleID  string        `json:"cycleId"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	DryRun   bool          `json:"dryRun"`

	// FetchErr is set when the queue could not be retrieved; no actions ran.
	FetchErr error `json:"-"`
	Items    int   `json:"items"`

	Monitored  int `json:"monitored"`
	Deleted    int `json:"deleted"`
	Superseded int `json:"superseded"`

	Refreshed     int `json:"refreshed"`
	RefreshFailed int `json:"refreshFailed"`
	// DeleteRequested is the number of ids sent in the bulk delete.
	DeleteRequested int   `json:"deleteRequested"`
	DeleteErr       error `json:"-"`
}

// FetchFailed reports whether the queue fetch failed.
func (r Result) FetchFailed() bool {
	return r.FetchErr != nil
}

// HasFailures reports whether any backend call in the cycle failed.
func (r Result) HasFailures() bool {
	return r.FetchErr != nil || r.RefreshFailed > 0 || r.DeleteErr != nil
}

// Acted reports whether the cycle refreshed or deleted anything.
func (r Result) Acted() bool {
	return r.Refreshed > 0 || r.RefreshFailed > 0 || r.DeleteRequested > 0
}

// Err joins every failure recorded in the result.
func (r Result) Err() error {
	return errors.Join(r.FetchErr, r.DeleteErr)
}

// Plan fetches the queue and classifies it without acting.
func (c *Cycle) Plan(ctx context.Context) (Plan, error) {
	items, err := c.backend.FetchQueue(ctx)
	if err != nil {
		return Plan{}, err
	}
	return Classify(items, c.rules, logging.WithContext(ctx, c.logger)), nil
}

// Run executes one full cycle. It never returns an error; failures are
// recorded on the Result and logged.
func (c *Cycle) Run(ctx context.Context) (result Result) {
	started := c.now()
	result = Result{
		Instance: c.name,
		CycleID:  uuid.NewString(),
		Started:  started,
		DryRun:   c.dryRun,
	}
	ctx = services.WithCycleID(services.WithInstance(ctx, c.name), result.CycleID)
	logger := logging.WithContext(ctx, c.logger)
	defer func() {
		result.Duration = c.now().Sub(started)
	}()

	logger.Info("triage cycle started",
		logging.String(logging.FieldEventType, "cycle_started"),
		logging.Bool("dry_run", c.dryRun),
	)

	plan, err := c.Plan(ctx)
	if err != nil {
		result.FetchErr = err
		logging.ErrorWithContext(logger, "queue fetch failed", "queue_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check the instance url and api key"),
		)
		return result
	}
	result.Items = len(plan.Decisions)
	counts := plan.Counts()
	result.Monitored = counts[Monitor]
	result.Deleted = counts[Delete]
	result.Superseded = counts[Superseded]

	logging.Trace(ctx, logger, "triage plan",
		logging.Any("refresh_series", plan.RefreshSeries),
		logging.Any("delete_ids", plan.DeleteIDs),
	)

	if c.dryRun {
		logger.Info("dry run; skipping actions",
			logging.String(logging.FieldEventType, "cycle_dry_run"),
			logging.Int("refresh_series", len(plan.RefreshSeries)),
			logging.Int("delete_ids", len(plan.DeleteIDs)),
		)
		return result
	}

	c.refresh(ctx, logger, plan.RefreshSeries, &result)
	c.delete(ctx, logger, plan.DeleteIDs, &result)
	return result
}

func (c *Cycle) refresh(ctx context.Context, logger *slog.Logger, series []int, result *Result) {
	for _, id := range series {
		if ctx.Err() != nil {
			return
		}
		if err := c.backend.RefreshSeries(ctx, id); err != nil {
			result.RefreshFailed++
			logging.ErrorWithContext(logger, "series refresh failed", "refresh_failed",
				logging.Int("series_id", id),
				logging.Error(err),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.String(logging.FieldErrorHint, "retried on the next cycle"),
			)
			continue
		}
		result.Refreshed++
	}
	if result.Refreshed > 0 || result.RefreshFailed > 0 {
		logger.Info("series refreshed",
			logging.String(logging.FieldEventType, "refresh_summary"),
			logging.Int("refreshed", result.Refreshed),
			logging.Int("failed", result.RefreshFailed),
		)
	}
}

func (c *Cycle) delete(ctx context.Context, logger *slog.Logger, ids []int, result *Result) {
	if len(ids) == 0 || ctx.Err() != nil {
		return
	}
	result.DeleteRequested = len(ids)
	if err := c.backend.DeleteQueueItems(ctx, ids, true); err != nil {
		result.DeleteErr = err
		logging.ErrorWithContext(logger, "bulk delete failed", "bulk_delete_failed",
			logging.Int("count", len(ids)),
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "retried on the next cycle"),
		)
		return
	}
	logger.Info("queue items deleted",
		logging.String(logging.FieldEventType, "bulk_delete_completed"),
		logging.Int("count", len(ids)),
	)
}
