// Package workflow runs triage cycles for every configured instance on a
// fixed, self-paced interval.
//
// The Manager owns one triage.Cycle per Sonarr instance. Each tick runs the
// cycles one after another in configuration order, publishes notifications
// for cycles that acted or failed, then waits for the remainder of the
// interval. A tick that overruns the interval is followed by the next one
// immediately. Every cycle allocates its own scoreboard, so nothing is shared
// across instances or ticks.
package workflow
