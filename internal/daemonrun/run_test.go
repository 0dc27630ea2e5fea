package daemonrun

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"scrubarr/internal/config"
	"scrubarr/internal/services"
)

type fakeSonarr struct {
	mu      sync.Mutex
	deletes []string
	queue   string
	status  int
}

func (f *fakeSonarr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		http.Error(w, "unavailable", f.status)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/queue":
		io.WriteString(w, f.queue)
	case r.Method == http.MethodDelete && r.URL.Path == "/api/v3/queue/bulk":
		body, _ := io.ReadAll(r.Body)
		f.deletes = append(f.deletes, strings.TrimSpace(string(body)))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSonarr) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func testConfig(t *testing.T, urls ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	cfg.Sonarr = map[string]config.Sonarr{}
	for i, u := range urls {
		cfg.Sonarr[string(rune('1'+i))] = config.Sonarr{URL: u, APIKey: "key", RequestTimeout: 5, PageSize: 100}
	}
	return &cfg
}

func TestClientsSkipsInvalidInstances(t *testing.T) {
	cfg := testConfig(t, "http://sonarr-a:8989", "http://sonarr-b:8989")
	cfg.Sonarr["3"] = config.Sonarr{URL: "http://sonarr-c:8989"}

	clients, err := Clients(cfg, nil)
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(clients) != 2 || clients[0].Name() != "sonarr-1" || clients[1].Name() != "sonarr-2" {
		t.Fatalf("unexpected clients %d", len(clients))
	}
}

func TestClientsRequiresUsableInstance(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sonarr["1"] = config.Sonarr{URL: "ftp://sonarr", APIKey: "key"}

	_, err := Clients(cfg, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 invalid") {
		t.Fatalf("expected invalid count in %v", err)
	}
}

func TestRunOnceTriagesQueue(t *testing.T) {
	backend := &fakeSonarr{queue: `{"totalRecords":2,"records":[
		{"id":4,"title":"a","statusMessages":[{"title":"a","messages":["Not an upgrade for existing episode file(s)"]}]},
		{"id":5,"title":"b","statusMessages":[]}
	]}`}
	server := httptest.NewServer(backend)
	defer server.Close()
	cfg := testConfig(t, server.URL)

	if err := Run(context.Background(), cfg, Options{Once: true, LogLevel: "error"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if deletes := backend.deleted(); len(deletes) != 1 || deletes[0] != `{"ids":[4]}` {
		t.Fatalf("deletes = %v", deletes)
	}
	if _, err := os.Lstat(filepath.Join(cfg.Logging.Dir, currentLogName)); err != nil {
		t.Fatalf("expected current log pointer: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(cfg.Logging.Dir, logFilePrefix+"*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one run log, got %v", matches)
	}
}

func TestRunOnceDryRunIssuesNoActions(t *testing.T) {
	backend := &fakeSonarr{queue: `{"records":[
		{"id":4,"statusMessages":[{"messages":["Not an upgrade for existing episode file(s)"]}]}
	]}`}
	server := httptest.NewServer(backend)
	defer server.Close()
	cfg := testConfig(t, server.URL)

	if err := Run(context.Background(), cfg, Options{Once: true, DryRun: true, LogLevel: "error"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deletes := backend.deleted(); len(deletes) != 0 {
		t.Fatalf("dry run issued deletes: %v", deletes)
	}
}

func TestRunOnceFailsWhenEveryFetchFails(t *testing.T) {
	backend := &fakeSonarr{status: http.StatusBadGateway}
	server := httptest.NewServer(backend)
	defer server.Close()
	cfg := testConfig(t, server.URL)

	err := Run(context.Background(), cfg, Options{Once: true, LogLevel: "error"})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestEnsureCurrentLogPointerReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "scrubarr-1.log")
	second := filepath.Join(dir, "scrubarr-2.log")
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte(filepath.Base(path)), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if err := ensureCurrentLogPointer(dir, first); err != nil {
		t.Fatalf("first pointer: %v", err)
	}
	if err := ensureCurrentLogPointer(dir, second); err != nil {
		t.Fatalf("second pointer: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, currentLogName))
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	if string(data) != "scrubarr-2.log" {
		t.Fatalf("pointer resolves to %q", data)
	}
}
