package workflow

import (
	"context"
	"errors"
	"time"

	"scrubarr/internal/logging"
	"scrubarr/internal/triage"
)

// RunOnce runs every cycle once, sequentially, and returns their results in
// order. Cycles still pending when ctx ends are skipped.
func (m *Manager) RunOnce(ctx context.Context) []triage.Result {
	results := make([]triage.Result, 0, len(m.cycles))
	for _, cycle := range m.cycles {
		if ctx.Err() != nil {
			break
		}
		result := cycle.Run(ctx)
		results = append(results, result)
		m.logResult(result)
		m.notifyResult(ctx, result)
	}

	m.mu.Lock()
	m.ticks++
	m.last = m.now()
	m.results = results
	m.mu.Unlock()
	return results
}

// Run ticks until ctx ends. Each wait is the interval minus the time the tick
// took, so ticks start on a steady cadence unless one overruns.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.cycles) == 0 {
		m.mu.Unlock()
		return errors.New("no instances to triage")
	}
	m.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.logger.Info("workflow started",
		logging.String(logging.FieldEventType, "workflow_started"),
		logging.Int("instances", len(m.cycles)),
		logging.Duration("interval", m.interval),
	)

	for {
		started := m.now()
		m.RunOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}

		elapsed := m.now().Sub(started)
		delay := NextDelay(m.interval, elapsed)
		m.logger.Info("next run scheduled",
			logging.String(logging.FieldEventType, "next_run_scheduled"),
			logging.Duration("delay", delay),
			logging.Duration("elapsed", elapsed),
		)
		if delay == 0 {
			logging.WarnWithContext(m.logger, "tick overran interval", "tick_overrun",
				logging.Duration("elapsed", elapsed),
				logging.Duration("interval", m.interval),
				logging.String(logging.FieldImpact, "next tick starts immediately"),
				logging.String(logging.FieldErrorHint, "raise workflow.interval or check backend latency"),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-m.after(delay):
		}
	}
}

func (m *Manager) logResult(result triage.Result) {
	logger := m.logger.With(logging.String(logging.FieldInstance, result.Instance))
	if result.FetchFailed() {
		logger.Warn("cycle skipped; queue unavailable",
			logging.String(logging.FieldEventType, "cycle_skipped"),
			logging.String(logging.FieldCycleID, result.CycleID),
			logging.Duration("duration", result.Duration.Round(time.Millisecond)),
		)
		return
	}
	logger.Info("triage cycle completed",
		logging.String(logging.FieldEventType, "cycle_completed"),
		logging.String(logging.FieldCycleID, result.CycleID),
		logging.Int("items", result.Items),
		logging.Int("monitored", result.Monitored),
		logging.Int("deleted", result.Deleted),
		logging.Int("superseded", result.Superseded),
		logging.Bool("dry_run", result.DryRun),
		logging.Duration("duration", result.Duration.Round(time.Millisecond)),
	)
}
