package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Workflow contains scheduling configuration.
type Workflow struct {
	// Interval is the seconds between the start of consecutive ticks.
	Interval int `toml:"interval" yaml:"interval" json:"interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format" yaml:"format" json:"format"`
	Level         string `toml:"level" yaml:"level" json:"level"`
	Dir           string `toml:"dir" yaml:"dir" json:"dir"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days" json:"retention_days"`
	// Verbose logs every backend request and response status at debug.
	Verbose bool `toml:"verbose" yaml:"verbose" json:"verbose"`
}

// Sonarr describes one backend instance.
type Sonarr struct {
	URL            string `toml:"url" yaml:"url" json:"url"`
	APIKey         string `toml:"api_key" yaml:"api_key" json:"api_key"`
	BasePath       string `toml:"base_path" yaml:"base_path" json:"base_path"`
	RequestTimeout int    `toml:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	PageSize       int    `toml:"page_size" yaml:"page_size" json:"page_size"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic" yaml:"ntfy_topic" json:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	CycleSummary   bool   `toml:"cycle_summary" yaml:"cycle_summary" json:"cycle_summary"`
	Errors         bool   `toml:"errors" yaml:"errors" json:"errors"`
}

// Config encapsulates all configuration values for scrubarr.
type Config struct {
	Workflow      Workflow          `toml:"workflow" yaml:"workflow" json:"workflow"`
	Logging       Logging           `toml:"logging" yaml:"logging" json:"logging"`
	Sonarr        map[string]Sonarr `toml:"sonarr" yaml:"sonarr" json:"sonarr"`
	Notifications Notifications     `toml:"notifications" yaml:"notifications" json:"notifications"`

	// Warnings collects adjustments made while normalizing, for the caller to log.
	Warnings []string `toml:"-" yaml:"-" json:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// resolved path and whether the file existed; a missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := decode(resolvedPath, data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Environ()); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// decode picks a parser by file extension. Unknown extensions are read as TOML.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(cfg)
	default:
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
	}
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := ExpandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Redacted returns a copy with API keys masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Sonarr = maps.Clone(c.Sonarr)
	for key, instance := range out.Sonarr {
		if instance.APIKey != "" {
			instance.APIKey = redactedSecret
			out.Sonarr[key] = instance
		}
	}
	out.Warnings = nil
	return out
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
