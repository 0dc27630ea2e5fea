package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scrubarr/internal/config"
	"scrubarr/internal/logging"
	"scrubarr/internal/notifications"
	"scrubarr/internal/workflow"
)

// LockFileName is the lock created in the log directory.
const LockFileName = "scrubarr.lock"

// Daemon runs the workflow manager under a single-instance lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	workflow *workflow.Manager

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || wf == nil {
		return nil, errors.New("daemon requires config and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	if dir == "" {
		return nil, errors.New("daemon requires logging.dir for its lock file")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lockPath := filepath.Join(dir, LockFileName)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Run acquires the lock and drives the workflow until ctx ends.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release()

	d.logger.Info("scrubarr daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
	)
	err := d.workflow.Run(ctx)
	d.logger.Info("scrubarr daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
	if err != nil {
		return fmt.Errorf("run workflow: %w", err)
	}
	return nil
}

// RunOnce acquires the lock, runs a single tick, and releases it.
func (d *Daemon) RunOnce(ctx context.Context) (workflow.StatusSummary, error) {
	if err := d.acquire(); err != nil {
		return workflow.StatusSummary{}, err
	}
	defer d.release()

	d.workflow.RunOnce(ctx)
	return d.workflow.Status(), nil
}

func (d *Daemon) acquire() error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another scrubarr instance is already running (lock %s)", d.lockPath)
	}
	d.running.Store(true)
	return nil
}

func (d *Daemon) release() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	if d.running.Load() {
		d.release()
	}
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LockPath returns the path to the daemon lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(),
		LockFilePath: d.lockPath,
	}
}
