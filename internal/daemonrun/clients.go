package daemonrun

import (
	"errors"
	"fmt"
	"log/slog"

	"scrubarr/internal/config"
	"scrubarr/internal/logging"
	"scrubarr/internal/services"
	"scrubarr/internal/services/sonarr"
)

// Clients builds a Sonarr client per usable instance, in index order.
// Unusable instances are logged and skipped; having none is an error.
func Clients(cfg *config.Config, logger *slog.Logger) ([]*sonarr.Client, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	instances, errs := cfg.Instances()
	for _, err := range errs {
		logging.ErrorWithContext(logger, "sonarr instance skipped", "instance_config_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "fix the [sonarr.N] entry or its SCRUBARR_SONARR_N_* variables"),
			logging.String(logging.FieldImpact, "this instance is not triaged"),
		)
	}
	if len(instances) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "", "configure instances",
			fmt.Sprintf("no usable sonarr instances (%d invalid)", len(errs)), errors.Join(errs...))
	}

	clients := make([]*sonarr.Client, 0, len(instances))
	for _, instance := range instances {
		clients = append(clients, sonarr.New(instance, sonarr.Options{
			Logger:  logger,
			Verbose: cfg.Logging.Verbose,
		}))
	}
	return clients, nil
}
