// Package daemonrun bootstraps the scrubarr process: per-run log files,
// log retention, Sonarr client construction and the daemon itself.
package daemonrun
