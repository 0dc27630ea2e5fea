package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scrubarr/internal/testsupport"
	"scrubarr/internal/triage"
)

const sonarrQueue = `{"totalRecords":3,"records":[
	{"id":1,"seriesId":3,"episodeId":30,"series":{"id":3,"title":"Example Show"},"customFormatScore":5,"statusMessages":[]},
	{"id":2,"seriesId":3,"episodeId":30,"series":{"id":3,"title":"Example Show"},"customFormatScore":9,"statusMessages":[]},
	{"id":3,"seriesId":4,"episodeId":40,"series":{"id":4,"title":"Other Show"},"statusMessages":[{"title":"Episode has a TBA title and recently aired","messages":[]}]}
]}`

func newSonarrServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/queue":
			if r.Method != http.MethodGet {
				t.Errorf("preview must not %s the queue", r.Method)
			}
			io.WriteString(w, sonarrQueue)
		case "/api/v3/system/status":
			io.WriteString(w, `{"appName":"Sonarr","version":"4.0.9.2244"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupConfig(t *testing.T) string {
	t.Helper()
	testsupport.IsolateEnv(t)
	server := newSonarrServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSonarr(1, server.URL, "secret-key"))
	return testsupport.WriteConfigFile(t, cfg)
}

func TestConfigInitWritesSample(t *testing.T) {
	home := testsupport.IsolateEnv(t)
	target := filepath.Join(home, "conf", "scrubarr.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected existing file to be refused")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigValidateAndShow(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Instance sonarr-1") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", out)
	}

	out, err = runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret-key") {
		t.Fatalf("api key leaked: %q", out)
	}
	if !strings.Contains(out, "********") {
		t.Fatalf("expected redacted key in %q", out)
	}
}

func TestConfigValidateRejectsMissingInstances(t *testing.T) {
	testsupport.IsolateEnv(t)
	if _, err := runCLI(t, "config", "validate"); err == nil {
		t.Fatal("expected error without sonarr instances")
	}
}

func TestQueueJSONPreview(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "queue", "--json")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	var plans []struct {
		Instance  string `json:"instance"`
		Decisions []struct {
			Item struct {
				ID int `json:"id"`
			} `json:"item"`
			Disposition  string `json:"disposition"`
			SupersededBy int    `json:"supersededBy"`
		} `json:"decisions"`
		RefreshSeries []int `json:"refreshSeries"`
		DeleteIDs     []int `json:"deleteIds"`
	}
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(plans) != 1 || plans[0].Instance != "sonarr-1" {
		t.Fatalf("unexpected plans %+v", plans)
	}
	plan := plans[0]
	if len(plan.Decisions) != 3 {
		t.Fatalf("decisions = %+v", plan.Decisions)
	}
	if plan.Decisions[0].Disposition != "superseded" || plan.Decisions[0].SupersededBy != 2 {
		t.Fatalf("first decision = %+v", plan.Decisions[0])
	}
	if plan.Decisions[2].Disposition != "monitor" {
		t.Fatalf("third decision = %+v", plan.Decisions[2])
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != 1 {
		t.Fatalf("delete ids = %v", plan.DeleteIDs)
	}
	if len(plan.RefreshSeries) != 1 || plan.RefreshSeries[0] != 4 {
		t.Fatalf("refresh series = %v", plan.RefreshSeries)
	}
}

func TestQueueTablePreview(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "queue")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	for _, want := range []string{"Superseded by 2", "Monitor", "Example Show", "3-30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestQueueSeriesFilter(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "queue", "--json", "--series", "OTHER show")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	var plans []struct {
		Decisions []struct {
			Item struct {
				ID int `json:"id"`
			} `json:"item"`
		} `json:"decisions"`
		DeleteIDs []int `json:"deleteIds"`
	}
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(plans) != 1 || len(plans[0].Decisions) != 1 || plans[0].Decisions[0].Item.ID != 3 {
		t.Fatalf("unexpected plans %+v", plans)
	}
	if len(plans[0].DeleteIDs) != 1 || plans[0].DeleteIDs[0] != 1 {
		t.Fatalf("filter must not change the plan itself: %v", plans[0].DeleteIDs)
	}
}

func TestFilterSeriesFoldsCase(t *testing.T) {
	decisions := []triage.Decision{
		{Item: testsupport.NewItem(1, testsupport.WithTitle("ÉLITE"))},
		{Item: testsupport.NewItem(2, testsupport.WithTitle("Dark"))},
	}
	if got := filterSeries(decisions, "  "); len(got) != 2 {
		t.Fatalf("blank filter kept %d", len(got))
	}
	got := filterSeries(decisions, "élite")
	if len(got) != 1 || got[0].Item.ID != 1 {
		t.Fatalf("filtered = %+v", got)
	}
	if got := filterSeries(decisions, "lost"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestQueueUnknownInstance(t *testing.T) {
	path := setupConfig(t)
	if _, err := runCLI(t, "--config", path, "queue", "--instance", "7"); err == nil {
		t.Fatal("expected unknown instance error")
	}
}

func TestPingReportsVersion(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !strings.Contains(out, "Sonarr 4.0.9.2244") || !strings.Contains(out, "sonarr-1") {
		t.Fatalf("unexpected ping output %q", out)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	path := setupConfig(t)

	out, err := runCLI(t, "--config", path, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "ntfy topic not configured") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunOnceDryRun(t *testing.T) {
	path := setupConfig(t)

	if _, err := runCLI(t, "--config", path, "run", "--once", "--dry-run", "--log-level", "error"); err != nil {
		t.Fatalf("run --once: %v", err)
	}
}
