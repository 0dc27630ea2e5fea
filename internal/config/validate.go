package config

import (
	"errors"
	"fmt"
)

var validLogLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate ensures the global configuration is usable. Individual Sonarr
// entries are checked by Instances.
func (c *Config) Validate() error {
	if c.Workflow.Interval <= 0 {
		return errors.New("workflow.interval must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if len(c.Sonarr) == 0 {
		return errors.New("no sonarr instances configured; add a [sonarr.1] section or set SCRUBARR_SONARR_1_KEY")
	}
	return nil
}
