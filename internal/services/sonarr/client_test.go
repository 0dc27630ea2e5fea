package sonarr_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"scrubarr/internal/config"
	"scrubarr/internal/services"
	"scrubarr/internal/services/sonarr"
)

func newClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.Instance)) *sonarr.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	instance := config.Instance{
		Index:          1,
		Name:           "sonarr-1",
		URL:            server.URL,
		APIKey:         "key-123",
		RequestTimeout: 2 * time.Second,
		PageSize:       250,
	}
	for _, fn := range mutate {
		fn(&instance)
	}
	return sonarr.New(instance, sonarr.Options{HTTPClient: server.Client()})
}

const queueFixture = `{
  "page": 1,
  "pageSize": 250,
  "totalRecords": 3,
  "records": [
    {
      "id": 11,
      "seriesId": 5,
      "episodeId": 50,
      "series": {"id": 5, "title": "Example Show"},
      "title": "Example.Show.S01E01.1080p",
      "status": "completed",
      "trackedDownloadStatus": "warning",
      "customFormatScore": 120,
      "statusMessages": [
        {"title": "Example.Show.S01E01.1080p", "messages": ["Episode has a TBA title and recently aired"]}
      ]
    },
    {
      "id": 12,
      "seriesId": 5,
      "episodeId": 50,
      "title": "Example.Show.S01E01.720p",
      "customFormatScore": -10,
      "statusMessages": []
    },
    {
      "id": 13,
      "title": "unknown.release",
      "customFormatScore": 0
    }
  ]
}`

func TestFetchQueue(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v3/queue" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "key-123" {
			t.Errorf("unexpected api key %q", got)
		}
		q := r.URL.Query()
		if q.Get("pageSize") != "250" || q.Get("includeSeries") != "true" || q.Get("status") != "completed" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, queueFixture)
	})

	items, err := client.FetchQueue(context.Background())
	if err != nil {
		t.Fatalf("FetchQueue: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	ids := []int{items[0].ID, items[1].ID, items[2].ID}
	if !slices.Equal(ids, []int{11, 12, 13}) {
		t.Fatalf("fetch order not preserved: %v", ids)
	}
	first := items[0]
	key, ok := first.DedupKey()
	if !ok || key.SeriesID != 5 || key.EpisodeID != 50 {
		t.Fatalf("unexpected dedup key %v %v", key, ok)
	}
	if first.QualityScore != 120 || first.SeriesTitle != "Example Show" {
		t.Fatalf("unexpected item %+v", first)
	}
	if len(first.StatusMessages) != 1 || first.StatusMessages[0].Messages[0] != "Episode has a TBA title and recently aired" {
		t.Fatalf("unexpected status messages %+v", first.StatusMessages)
	}
	if items[1].QualityScore != -10 {
		t.Fatalf("negative scores must survive: %+v", items[1])
	}
	if _, ok := items[2].DedupKey(); ok {
		t.Fatal("item without ids must have no dedup key")
	}
}

func TestBasePathPrefixesRequests(t *testing.T) {
	var gotPath string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, `{"appName":"Sonarr","version":"4.0.0.1"}`)
	}, func(i *config.Instance) { i.BasePath = "/sonarr" })

	status, err := client.SystemStatus(context.Background())
	if err != nil {
		t.Fatalf("SystemStatus: %v", err)
	}
	if gotPath != "/sonarr/api/v3/system/status" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if status.AppName != "Sonarr" || status.Version != "4.0.0.1" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestRefreshSeriesPostsCommand(t *testing.T) {
	var payload map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/command" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 99, "name": "RefreshSeries"}`)
	})

	if err := client.RefreshSeries(context.Background(), 42); err != nil {
		t.Fatalf("RefreshSeries: %v", err)
	}
	if payload["name"] != "RefreshSeries" || payload["seriesId"] != float64(42) {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestDeleteQueueItemsSendsBulkRequest(t *testing.T) {
	var (
		calls int
		body  struct {
			IDs []int `json:"ids"`
		}
	)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v3/queue/bulk" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("removeFromClient") != "true" {
			t.Errorf("expected removeFromClient=true, got %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.DeleteQueueItems(context.Background(), nil, true); err != nil {
		t.Fatalf("empty delete: %v", err)
	}
	if calls != 0 {
		t.Fatal("empty delete must not call the backend")
	}
	if err := client.DeleteQueueItems(context.Background(), []int{3, 7}, true); err != nil {
		t.Fatalf("DeleteQueueItems: %v", err)
	}
	if calls != 1 || !slices.Equal(body.IDs, []int{3, 7}) {
		t.Fatalf("calls=%d ids=%v", calls, body.IDs)
	}
}

func TestErrorsCarryMarkers(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(*sonarr.Client) error
		marker error
		auth   bool
	}{
		{
			name:   "fetch server error",
			status: http.StatusInternalServerError,
			call:   func(c *sonarr.Client) error { _, err := c.FetchQueue(context.Background()); return err },
			marker: services.ErrFetch,
		},
		{
			name:   "refresh unauthorized",
			status: http.StatusUnauthorized,
			call:   func(c *sonarr.Client) error { return c.RefreshSeries(context.Background(), 1) },
			marker: services.ErrAction,
			auth:   true,
		},
		{
			name:   "delete forbidden",
			status: http.StatusForbidden,
			call:   func(c *sonarr.Client) error { return c.DeleteQueueItems(context.Background(), []int{1}, true) },
			marker: services.ErrAction,
			auth:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			err := tt.call(client)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected marker %v, got %v", tt.marker, err)
			}
			if errors.Is(err, services.ErrAuth) != tt.auth {
				t.Fatalf("auth marker mismatch: %v", err)
			}
			if !strings.Contains(err.Error(), "sonarr-1") {
				t.Fatalf("expected instance in error: %v", err)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(i *config.Instance) { i.RequestTimeout = 50 * time.Millisecond })
	defer close(release)

	err := client.RefreshSeries(context.Background(), 1)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}
