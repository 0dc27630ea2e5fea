// Package notifications delivers triage outcomes via ntfy.
//
// NewService returns a Service backed by the configured ntfy topic, or a
// no-op when no topic is set. Callers publish an Event with a loosely typed
// Payload; the service formats the message, filters events the operator has
// switched off, and performs the HTTP POST.
package notifications
