package publishers

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	id    string
	typ   string
	err   error
	calls int
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		nil,
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
	})
	if fanout.Size() != 2 {
		t.Fatalf("nil publisher kept, size %d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutRoutesBySelector(t *testing.T) {
	failures := &stubPublisher{id: "alerts", typ: "http"}
	changes := &stubPublisher{id: "changes", typ: "sqs"}
	everything := &stubPublisher{id: "all", typ: "sqs"}

	onlyFailures, err := NewSelector([]string{"request-failed", "invalid-response"}, false)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	onlyChanged, err := NewSelector(nil, true)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	fanout := NewFanout([]Publisher{everything})
	fanout.Add(failures, onlyFailures)
	fanout.Add(changes, onlyChanged)

	events := []Event{
		{RequestID: "a", Outcome: OutcomeOK},
		{RequestID: "b", Outcome: "request-failed", Changed: true},
		{RequestID: "c", Outcome: OutcomeOK, Changed: true},
		{RequestID: "d", Outcome: "invalid-response"},
	}
	delivered := 0
	for _, evt := range events {
		n, err := fanout.Publish(context.Background(), evt)
		if err != nil {
			t.Fatalf("Publish: %v", err)
		}
		delivered += n
	}
	if everything.calls != 4 || failures.calls != 2 || changes.calls != 2 {
		t.Fatalf("calls all=%d failures=%d changes=%d", everything.calls, failures.calls, changes.calls)
	}
	if delivered != 8 {
		t.Fatalf("delivered = %d, want 8", delivered)
	}
}

func TestBuildRoutesConfigsThroughSelectors(t *testing.T) {
	stub := &stubPublisher{id: "alerts", typ: "stub"}
	builders := map[string]Builder{
		"stub": func(context.Context, Config, Logger) (Publisher, error) { return stub, nil },
	}
	cfg := Config{ID: "alerts", Type: "stub"}
	cfg.selector, _ = NewSelector([]string{"request-failed"}, false)

	fanout, err := Build(context.Background(), builders, []Config{cfg}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, outcome := range []string{OutcomeOK, "request-failed", "invalid-response"} {
		if _, err := fanout.Publish(context.Background(), Event{Outcome: outcome}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", stub.calls)
	}
}

func TestBuildWithDefaultBuilders(t *testing.T) {
	cfg, err := Config{ID: "hook", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://example.com"}}.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	fanout, err := Build(context.Background(), DefaultBuilders(), []Config{cfg}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if fanout.Size() != 1 {
		t.Fatalf("expected 1 publisher, got %d", fanout.Size())
	}
}

func TestBuildUnknownType(t *testing.T) {
	if _, err := Build(context.Background(), DefaultBuilders(), []Config{{ID: "x", Type: "kafka"}}, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestFanoutStopsOnCancelledContext(t *testing.T) {
	stub := &stubPublisher{id: "a", typ: "http"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := NewFanout([]Publisher{stub}).Publish(ctx, Event{RequestID: "r1"})
	if count != 0 || !errors.Is(err, context.Canceled) {
		t.Fatalf("count=%d err=%v", count, err)
	}
	if stub.calls != 0 {
		t.Fatalf("publisher called after cancellation")
	}
}
