package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"scrubarr/internal/config"
	"scrubarr/internal/daemon"
	"scrubarr/internal/logging"
	"scrubarr/internal/notifications"
	"scrubarr/internal/triage"
	"scrubarr/internal/workflow"
)

const (
	logFilePrefix  = "scrubarr-"
	currentLogName = "scrubarr.log"
	pidFileName    = "scrubarr.pid"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel    string
	Development bool
	// Once runs a single tick and returns.
	Once bool
	// DryRun classifies without issuing refresh or delete calls.
	DryRun bool
}

// Run starts the scrubarr daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logDir := cfg.Logging.Dir
	logPath := filepath.Join(logDir, fmt.Sprintf("%s%s.log", logFilePrefix, runID))

	logger, err := newRunLogger(cfg, opts, runID, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(logDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", currentLogName, err)
	}
	logging.PruneRunLogs(logger, logging.RunLogs{Dir: logDir, Prefix: logFilePrefix, Active: logPath}, cfg.Logging.RetentionDays, time.Now())
	for _, warning := range cfg.Warnings {
		logging.WarnWithContext(logger, "configuration adjusted", "config_adjusted",
			logging.String("detail", warning),
			logging.String(logging.FieldErrorHint, "update the config file or environment"),
		)
	}

	clients, err := Clients(cfg, logger)
	if err != nil {
		logger.Error("no usable sonarr instances", logging.Error(err))
		return err
	}
	cycles := make([]workflow.Cycle, 0, len(clients))
	for _, client := range clients {
		cycles = append(cycles, triage.NewCycle(client.Name(), client, triage.Options{
			DryRun: opts.DryRun,
			Logger: logger,
		}))
	}

	manager := workflow.NewManager(workflow.Options{
		Interval: time.Duration(cfg.Workflow.Interval) * time.Second,
		Logger:   logger,
		Notifier: notifications.NewService(cfg),
	}, cycles...)

	d, err := daemon.New(cfg, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	logger.Info("scrubarr starting",
		logging.String(logging.FieldEventType, "startup"),
		logging.Int("instances", len(cycles)),
		logging.Duration("interval", manager.Interval()),
		logging.Bool("once", opts.Once),
		logging.Bool("dry_run", opts.DryRun),
		logging.String("log_path", logPath),
	)

	if opts.Once {
		summary, err := d.RunOnce(signalCtx)
		if err != nil {
			return err
		}
		return onceError(summary)
	}

	pidPath := filepath.Join(logDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if err := d.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("scrubarr shutting down", logging.String(logging.FieldEventType, "shutdown"))
	return nil
}

// newRunLogger builds the console logger and tees it into a JSON file for
// this run.
func newRunLogger(cfg *config.Config, opts Options, runID, logPath string) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	console, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout"},
		Development: opts.Development,
	})
	if err != nil {
		return nil, err
	}
	file, err := logging.New(logging.Options{
		Level:       level,
		Format:      "json",
		OutputPaths: []string{logPath},
		RunID:       runID,
		Development: opts.Development,
	})
	if err != nil {
		return nil, err
	}
	return logging.TeeLogger(console, file.Handler()), nil
}

// onceError surfaces a single-tick run where every instance failed to fetch,
// so scripts see a non-zero exit.
func onceError(summary workflow.StatusSummary) error {
	if len(summary.Results) == 0 {
		return nil
	}
	for _, result := range summary.Results {
		if !result.FetchFailed() {
			return nil
		}
	}
	return fmt.Errorf("queue fetch failed on every instance: %w", summary.Results[0].FetchErr)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, currentLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
