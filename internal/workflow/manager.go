package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"scrubarr/internal/config"
	"scrubarr/internal/logging"
	"scrubarr/internal/notifications"
	"scrubarr/internal/triage"
)

// Cycle is one instance's triage pass.
type Cycle interface {
	Name() string
	Run(ctx context.Context) triage.Result
}

// Options configures a Manager.
type Options struct {
	// Interval between tick starts. Values below config.MinInterval seconds
	// are raised to the floor.
	Interval time.Duration
	Logger   *slog.Logger
	Notifier notifications.Service

	// Now and After replace the wall clock in tests.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Manager coordinates triage cycles across instances.
type Manager struct {
	cycles   []Cycle
	interval time.Duration
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	mu      sync.RWMutex
	running bool
	ticks   int
	last    time.Time
	results []triage.Result
}

// NewManager constructs a manager that runs cycles in the given order.
func NewManager(opts Options, cycles ...Cycle) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	after := opts.After
	if after == nil {
		after = time.After
	}
	return &Manager{
		cycles:   cycles,
		interval: clampInterval(opts.Interval),
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		now:      now,
		after:    after,
	}
}

// Interval returns the effective tick interval.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// NextDelay returns how long to wait after a tick that took elapsed. The
// interval is floored at config.MinInterval seconds and the result at zero.
func NextDelay(interval, elapsed time.Duration) time.Duration {
	delay := clampInterval(interval) - elapsed
	if delay < 0 {
		return 0
	}
	return delay
}

func clampInterval(interval time.Duration) time.Duration {
	floor := time.Duration(config.MinInterval) * time.Second
	if interval < floor {
		return floor
	}
	return interval
}
