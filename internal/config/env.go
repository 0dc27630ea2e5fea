package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const envPrefix = "SCRUBARR_"

// legacyEnv maps deprecated single-instance variables onto instance 1.
var legacyEnv = map[string]string{
	"SCRUBARR_SONARR_URL":       "SCRUBARR_SONARR_1_URL",
	"SCRUBARR_SONARR_KEY":       "SCRUBARR_SONARR_1_KEY",
	"SCRUBARR_SONARR_BASE_PATH": "SCRUBARR_SONARR_1_BASE",
}

// applyEnv overlays SCRUBARR_* variables from environ (KEY=VALUE pairs).
// Numbered instance variables win over their deprecated aliases.
func (c *Config) applyEnv(environ []string) error {
	vars := make(map[string]string)
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		vars[key] = value
	}
	for _, legacy := range slices.Sorted(maps.Keys(legacyEnv)) {
		current := legacyEnv[legacy]
		value, ok := vars[legacy]
		if !ok {
			continue
		}
		delete(vars, legacy)
		if _, exists := vars[current]; !exists {
			vars[current] = value
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s is deprecated; use %s", legacy, current))
	}

	for key, value := range vars {
		value = strings.TrimSpace(value)
		switch key {
		case "SCRUBARR_INTERVAL":
			seconds, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %q is not a whole number of seconds", key, value)
			}
			c.Workflow.Interval = seconds
		case "SCRUBARR_LOG_LEVEL":
			c.Logging.Level = value
		case "SCRUBARR_LOG_FORMAT":
			c.Logging.Format = value
		case "SCRUBARR_LOG_DIR":
			c.Logging.Dir = value
		case "SCRUBARR_VERBOSE":
			verbose, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s: %q is not a boolean", key, value)
			}
			c.Logging.Verbose = verbose
		case "SCRUBARR_NTFY_TOPIC":
			c.Notifications.NtfyTopic = value
		default:
			if err := c.applyInstanceEnv(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyInstanceEnv handles SCRUBARR_SONARR_<N>_{URL,KEY,BASE}. Other keys are ignored.
func (c *Config) applyInstanceEnv(key, value string) error {
	rest, ok := strings.CutPrefix(key, "SCRUBARR_SONARR_")
	if !ok {
		return nil
	}
	index, field, ok := strings.Cut(rest, "_")
	if !ok {
		return nil
	}
	n, err := parseIndex(index)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if c.Sonarr == nil {
		c.Sonarr = map[string]Sonarr{}
	}
	// File keys are not canonical yet; merge into whichever spells this index.
	target := strconv.Itoa(n)
	for existing := range c.Sonarr {
		if idx, err := parseIndex(existing); err == nil && idx == n {
			target = existing
			break
		}
	}
	instance := c.Sonarr[target]
	switch field {
	case "URL":
		instance.URL = value
	case "KEY":
		instance.APIKey = value
	case "BASE":
		instance.BasePath = value
	default:
		return nil
	}
	c.Sonarr[target] = instance
	return nil
}

func parseIndex(key string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || index <= 0 {
		return 0, fmt.Errorf("instance index %q must be a positive integer", key)
	}
	return index, nil
}
