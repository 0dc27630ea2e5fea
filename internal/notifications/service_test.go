package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scrubarr/internal/config"
	"scrubarr/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "cycle summary",
			event: notifications.EventCycleSummary,
			payload: notifications.Payload{
				"instance":   "sonarr-1",
				"refreshed":  2,
				"deleted":    3,
				"superseded": 1,
			},
			expectTitle:   "Scrubarr - Queue Cleaned",
			expectMessage: "sonarr-1: 2 refreshed, 3 deleted, 1 superseded",
			expectTags:    "scrubarr,queue,cleaned",
		},
		{
			name:  "dry run summary",
			event: notifications.EventCycleSummary,
			payload: notifications.Payload{
				"instance": "sonarr-2",
				"deleted":  1,
				"dryRun":   true,
			},
			expectTitle:   "Scrubarr - Queue Cleaned",
			expectMessage: "sonarr-2: 0 refreshed, 1 deleted, 0 superseded (dry run)",
			expectTags:    "scrubarr,queue,cleaned",
		},
		{
			name:  "fetch failed",
			event: notifications.EventFetchFailed,
			payload: notifications.Payload{
				"instance": "sonarr-1",
				"error":    errors.New("connection refused"),
			},
			expectTitle:    "Scrubarr - Queue Unavailable",
			expectMessage:  "sonarr-1: connection refused",
			expectTags:     "scrubarr,error,fetch",
			expectPriority: "high",
		},
		{
			name:  "action failed",
			event: notifications.EventActionFailed,
			payload: notifications.Payload{
				"instance": "sonarr-1",
				"error":    "bulk delete: sonarr returned 500",
			},
			expectTitle:    "Scrubarr - Action Failed",
			expectMessage:  "sonarr-1: bulk delete: sonarr returned 500",
			expectTags:     "scrubarr,error,action",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Scrubarr - Test",
			expectMessage:  "Notification system test",
			expectTags:     "scrubarr,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				agent    string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				captured.agent = r.Header.Get("User-Agent")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
			if captured.agent != "scrubarr" {
				t.Fatalf("unexpected user agent %q", captured.agent)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for disabled event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.CycleSummary = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	disabled := []notifications.Event{
		notifications.EventCycleSummary,
		notifications.EventFetchFailed,
		notifications.EventActionFailed,
		notifications.Event("unknown"),
	}
	for _, event := range disabled {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"instance": "sonarr-1"}); err != nil {
			t.Fatalf("expected no error for disabled event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic reserved", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
