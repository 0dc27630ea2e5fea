package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeWorkflow()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeSonarr(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Interval > 0 && c.Workflow.Interval < MinInterval {
		c.Warnings = append(c.Warnings, fmt.Sprintf("workflow.interval %ds is below the %ds minimum; using %ds", c.Workflow.Interval, MinInterval, MinInterval))
		c.Workflow.Interval = MinInterval
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	dir, err := ExpandPath(c.Logging.Dir)
	if err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	c.Logging.Dir = dir
	return nil
}

// normalizeSonarr rewrites instance keys to their canonical index ("01" and
// " 1" both become "1"). Keys that are not indexes are kept for Instances to
// report.
func (c *Config) normalizeSonarr() error {
	defaults := defaultSonarr()
	normalized := make(map[string]Sonarr, len(c.Sonarr))
	origin := make(map[string]string, len(c.Sonarr))
	for _, key := range slices.Sorted(maps.Keys(c.Sonarr)) {
		instance := c.Sonarr[key]
		canonical := strings.TrimSpace(key)
		if index, err := parseIndex(canonical); err == nil {
			canonical = strconv.Itoa(index)
		}
		if prev, dup := origin[canonical]; dup {
			return fmt.Errorf("sonarr.%s and sonarr.%s configure the same instance", prev, key)
		}
		origin[canonical] = key

		instance.URL = strings.TrimRight(strings.TrimSpace(instance.URL), "/")
		instance.APIKey = strings.TrimSpace(instance.APIKey)
		instance.BasePath = normalizeBasePath(instance.BasePath)
		if instance.URL == "" && canonical == defaultInstanceKey {
			instance.URL = defaultSonarrURL
		}
		if instance.RequestTimeout == 0 {
			instance.RequestTimeout = defaults.RequestTimeout
		}
		if instance.PageSize == 0 {
			instance.PageSize = defaults.PageSize
		}
		normalized[canonical] = instance
	}
	c.Sonarr = normalized
	return nil
}

// normalizeBasePath returns "" or a path with one leading slash and no trailing slash.
func normalizeBasePath(value string) string {
	value = strings.Trim(strings.TrimSpace(value), "/")
	if value == "" {
		return ""
	}
	return "/" + value
}
