// Package services defines shared utilities consumed by the triage engine and
// the backend integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the backend instance name and the cycle
//     correlation identifier for logging.
//   - Error markers plus the Wrap helper so callers can tell a failed queue
//     fetch from a failed action, a timeout, or rejected credentials.
//
// Backend clients live in subpackages (sonarr) and depend on this package,
// never the other way around.
package services
