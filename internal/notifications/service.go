package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scrubarr/internal/config"
)

const userAgent = "scrubarr"

// Event identifies a notification type.
type Event string

const (
	// EventCycleSummary reports a cycle that refreshed or deleted something.
	EventCycleSummary Event = "cycle_summary"
	// EventFetchFailed reports an instance whose queue could not be read.
	EventFetchFailed Event = "fetch_failed"
	// EventActionFailed reports failed refresh or delete calls.
	EventActionFailed Event = "action_failed"
	// EventTest is sent by the test-notify command.
	EventTest Event = "test"
)

// Payload carries event-specific values.
type Payload map[string]any

// Service publishes notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		cycleSummary: cfg.Notifications.CycleSummary,
		errors:       cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	cycleSummary bool
	errors       bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil {
		return nil
	}
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	instance := payload.str("instance")
	switch event {
	case EventCycleSummary:
		if !n.cycleSummary {
			return message{}, false
		}
		body := fmt.Sprintf("%s: %d refreshed, %d deleted, %d superseded",
			instance, payload.num("refreshed"), payload.num("deleted"), payload.num("superseded"))
		if payload.flag("dryRun") {
			body += " (dry run)"
		}
		return message{
			title: "Scrubarr - Queue Cleaned",
			body:  body,
			tags:  []string{"scrubarr", "queue", "cleaned"},
		}, true
	case EventFetchFailed:
		if !n.errors {
			return message{}, false
		}
		return message{
			title:    "Scrubarr - Queue Unavailable",
			body:     fmt.Sprintf("%s: %s", instance, payload.str("error")),
			tags:     []string{"scrubarr", "error", "fetch"},
			priority: "high",
		}, true
	case EventActionFailed:
		if !n.errors {
			return message{}, false
		}
		return message{
			title:    "Scrubarr - Action Failed",
			body:     fmt.Sprintf("%s: %s", instance, payload.str("error")),
			tags:     []string{"scrubarr", "error", "action"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Scrubarr - Test",
			body:     "Notification system test",
			tags:     []string{"scrubarr", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) str(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) num(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (p Payload) flag(key string) bool {
	v, _ := p[key].(bool)
	return v
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
