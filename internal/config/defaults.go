package config

const (
	defaultInterval         = 600
	defaultLogDir           = "~/.local/share/scrubarr/logs"
	defaultLogRetentionDays = 14
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultSonarrURL        = "http://localhost:8989"
	defaultRequestTimeout   = 10
	defaultPageSize         = 1000
	defaultNotifyTimeout    = 10
	defaultConfigPath       = "~/.config/scrubarr/config.toml"
	projectConfigFile       = "scrubarr.toml"
	configPathEnv           = "X_SCRUBARR_CONFIG"
	defaultInstanceKey      = "1"
	redactedSecret          = "********"
)

// MinInterval is the floor applied to workflow.interval, in seconds.
const MinInterval = 300

// Default returns a Config populated with defaults. No Sonarr instance is
// configured by default.
func Default() Config {
	return Config{
		Workflow: Workflow{
			Interval: defaultInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
		Sonarr: map[string]Sonarr{},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			CycleSummary:   true,
			Errors:         true,
		},
	}
}

func defaultSonarr() Sonarr {
	return Sonarr{
		RequestTimeout: defaultRequestTimeout,
		PageSize:       defaultPageSize,
	}
}
