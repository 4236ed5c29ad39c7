package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/jsonhttp/internal/config"
	"github.com/samvad-hq/jsonhttp/pkg/publishers"
)

func writeRequestsFile(t *testing.T, dir, baseURL string) string {
	t.Helper()
	path := filepath.Join(dir, "requests.yaml")
	content := fmt.Sprintf(`
requests:
  - id: users
    method: get
    url: %[1]s/users
  - id: flaky
    url: %[1]s/flaky
    json:
      query: "{ flaky }"
  - id: text
    method: get
    url: %[1]s/text
`, baseURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write requests file: %v", err)
	}
	return path
}

func newTestConfig(dir, requestsFile string) *config.Config {
	return &config.Config{
		AppName:        "jsonfetch-test",
		RequestsFile:   requestsFile,
		RequestTimeout: 2 * time.Second,
		StorageType:    "bbolt",
		BBoltPath:      filepath.Join(dir, "history.db"),
		HistoryTTL:     time.Hour,
		HistoryCleanup: time.Hour,
	}
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []publishers.Event {
	t.Helper()
	var events []publishers.Event
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var evt publishers.Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("decode event line %q: %v", sc.Text(), err)
		}
		events = append(events, evt)
	}
	return events
}

func TestFetcherRunRecordsOutcomesAndDetectsChanges(t *testing.T) {
	var flakyDown atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"users":[{"id":1}]}`))
		case "/flaky":
			if flakyDown.Load() {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.api+json")
			_, _ = w.Write([]byte(`{"data":{}}`))
		default:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello"))
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := newTestConfig(dir, writeRequestsFile(t, dir, srv.URL))

	run := func() ([]publishers.Event, Summary, error) {
		f, err := NewFetcher(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("NewFetcher: %v", err)
		}
		var buf bytes.Buffer
		f.out = &buf
		f.newRunID = func() string { return "run" }
		summary, runErr := f.Run(context.Background())
		return decodeEvents(t, &buf), summary, runErr
	}

	events, summary, err := run()
	if err == nil {
		t.Fatalf("expected error because the text request fails")
	}
	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 || summary.Changed != 0 {
		t.Fatalf("first summary = %+v", summary)
	}
	if len(events) != 3 || events[0].RequestID != "users" || events[2].Outcome != "invalid-response" {
		t.Fatalf("first events = %+v", events)
	}
	if _, ok := events[0].Payload["users"]; !ok {
		t.Fatalf("payload missing: %+v", events[0].Payload)
	}

	flakyDown.Store(true)
	events, summary, _ = run()
	if summary.Failed != 2 || summary.Changed != 1 {
		t.Fatalf("second summary = %+v", summary)
	}
	if !events[1].Changed || events[1].Outcome != "invalid-response" {
		t.Fatalf("flaky change not detected: %+v", events[1])
	}
	if events[0].Changed || events[2].Changed {
		t.Fatalf("unchanged requests flagged: %+v", events)
	}
	if events[0].Streak != 2 || events[1].Streak != 1 || events[2].Streak != 2 {
		t.Fatalf("streaks = %d %d %d", events[0].Streak, events[1].Streak, events[2].Streak)
	}
}

func TestFetcherRunAllSucceed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := newTestConfig(dir, writeRequestsFile(t, dir, srv.URL))
	cfg.StorageType = "none"

	f, err := NewFetcher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	f.out = &bytes.Buffer{}

	summary, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 3 || summary.RunID == "" {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestNewFetcherRequiresConfig(t *testing.T) {
	if _, err := NewFetcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := newTestConfig(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := NewFetcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing requests file")
	}
}

func TestFetcherRunUninitialized(t *testing.T) {
	var f *Fetcher
	if _, err := f.Run(context.Background()); err == nil {
		t.Fatalf("expected error from nil fetcher")
	}
}
