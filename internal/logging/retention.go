package logging

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogs locates the per-run log files a daemon writes as
// <Dir>/<Prefix><run id>.log. Active is the file the current run writes to.
type RunLogs struct {
	Dir    string
	Prefix string
	Active string
}

func (r RunLogs) matches(entry fs.DirEntry) bool {
	if !entry.Type().IsRegular() {
		return false
	}
	name := entry.Name()
	if !strings.HasPrefix(name, r.Prefix) || !strings.HasSuffix(name, ".log") {
		return false
	}
	return r.Active == "" || name != filepath.Base(r.Active)
}

// PruneRunLogs deletes run logs last modified before now minus retentionDays
// and returns how many were removed. Symlinks such as the current-log pointer
// and the active run log are left alone. retentionDays <= 0 keeps everything.
func PruneRunLogs(logger *slog.Logger, logs RunLogs, retentionDays int, now time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(logs.Dir) == "" {
		return 0
	}
	entries, err := os.ReadDir(logs.Dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			WarnWithContext(logger, "log retention skipped", "log_retention_failed",
				String("dir", logs.Dir),
				Error(err),
				String(FieldErrorHint, "check logging.dir permissions"),
			)
		}
		return 0
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		if !logs.matches(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(logs.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions on the log directory"),
				String(FieldImpact, "old run log remains on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("run logs pruned",
			String("dir", logs.Dir),
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
