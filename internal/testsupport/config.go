package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"scrubarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp log directory and a
// single Sonarr instance at index 1. Options run after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Sonarr = map[string]config.Sonarr{
		"1": {URL: "http://localhost:8989", APIKey: "test", RequestTimeout: 5, PageSize: 100},
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSonarr sets or replaces the instance at index.
func WithSonarr(index int, url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sonarr[strconv.Itoa(index)] = config.Sonarr{URL: url, APIKey: apiKey, RequestTimeout: 5, PageSize: 100}
	}
}

// WithNtfyTopic points notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// IsolateEnv points HOME at a temp dir, clears SCRUBARR_* variables and
// changes into the new home so config discovery sees nothing from the host.
func IsolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("X_SCRUBARR_CONFIG", "")
	for _, entry := range os.Environ() {
		if key, _, ok := strings.Cut(entry, "="); ok && strings.HasPrefix(key, "SCRUBARR_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	t.Chdir(home)
	return home
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
