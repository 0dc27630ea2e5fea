// Package daemon owns the long-running scrubarr process lifecycle.
//
// It holds a flock-based lock in the log directory so only one scrubarr
// process triages a given set of instances, then drives the workflow
// manager until the context ends. Startup wiring lives in daemonrun; this
// package focuses on the lock and the run/stop boundary.
package daemon
