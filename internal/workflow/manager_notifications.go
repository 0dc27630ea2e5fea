package workflow

import (
	"context"
	"errors"
	"fmt"

	"scrubarr/internal/logging"
	"scrubarr/internal/notifications"
	"scrubarr/internal/triage"
)

func (m *Manager) notifyResult(ctx context.Context, result triage.Result) {
	if m.notifier == nil {
		return
	}
	switch {
	case result.FetchFailed():
		m.publish(ctx, notifications.EventFetchFailed, notifications.Payload{
			"instance": result.Instance,
			"error":    result.FetchErr,
		})
		return
	case result.RefreshFailed > 0 || result.DeleteErr != nil:
		m.publish(ctx, notifications.EventActionFailed, notifications.Payload{
			"instance": result.Instance,
			"error":    actionFailure(result),
		})
	}
	if result.Acted() || (result.DryRun && result.Monitored+result.Deleted+result.Superseded > 0) {
		m.publish(ctx, notifications.EventCycleSummary, notifications.Payload{
			"instance":   result.Instance,
			"refreshed":  result.Refreshed,
			"deleted":    result.Deleted,
			"superseded": result.Superseded,
			"dryRun":     result.DryRun,
		})
	}
}

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("shutting down, notification not sent", logging.String("event", string(event)))
			return
		}
		m.logger.Debug("notification failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

func actionFailure(result triage.Result) string {
	switch {
	case result.RefreshFailed > 0 && result.DeleteErr != nil:
		return fmt.Sprintf("%d series refreshes failed; %v", result.RefreshFailed, result.DeleteErr)
	case result.DeleteErr != nil:
		return result.DeleteErr.Error()
	default:
		return fmt.Sprintf("%d series refreshes failed", result.RefreshFailed)
	}
}
