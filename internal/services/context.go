package services

import "context"

type contextKey string

const (
	instanceKey contextKey = "instance"
	cycleIDKey  contextKey = "cycle_id"
)

// WithInstance annotates context with the backend instance name.
func WithInstance(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, instanceKey, name)
}

// InstanceFromContext returns the backend instance name if present.
func InstanceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(instanceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCycleID annotates context with a triage cycle correlation identifier.
func WithCycleID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, cycleIDKey, id)
}

// CycleIDFromContext extracts the cycle correlation identifier if present.
func CycleIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(cycleIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
