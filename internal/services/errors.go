package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks a failed queue retrieval. The cycle treats it as an empty queue.
	ErrFetch = errors.New("queue fetch failed")
	// ErrAction marks a failed refresh or delete call.
	ErrAction = errors.New("queue action failed")
	// ErrConfiguration marks an instance that cannot be constructed.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuth marks a backend rejecting the API key.
	ErrAuth = errors.New("authentication rejected")
	// ErrTimeout marks a call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes the instance and operation while
// tagging it with marker. A nil marker defaults to ErrAction.
func Wrap(marker error, instance, operation, message string, err error) error {
	detail := buildDetail(instance, operation, message)
	if marker == nil {
		marker = ErrAction
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			return fmt.Errorf("%w: %s: %w: %w", marker, detail, ErrTimeout, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the first marker found in err, for use as a
// structured log value.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrAction):
		return "action"
	default:
		return "unknown"
	}
}

func buildDetail(instance, operation, message string) string {
	parts := make([]string, 0, 3)
	if instance = strings.TrimSpace(instance); instance != "" {
		parts = append(parts, instance)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
