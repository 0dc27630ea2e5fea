// Package config loads, normalizes, and validates scrubarr configuration.
//
// It supplies defaults, reads TOML (or YAML/JSON, picked by file extension),
// layers SCRUBARR_* environment variables over the file, and expands user
// paths. Per-instance problems are reported by Instances so one broken Sonarr
// entry does not stop the others; global problems fail Load.
package config
