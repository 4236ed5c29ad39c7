package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samvad-hq/jsonhttp/internal/config"
)

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.InfoObj("batch done", "batch_meta", map[string]any{"requests": 3})
	log.DebugObj("dbg", "k", 1)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	meta, ok := fields["batch_meta"].(map[string]interface{})
	if !ok || meta["requests"] != 3 {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestZapLoggerWithBindsField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	run := New(zap.New(core)).With("run_id", "r-1")

	run.WarnObj("request failed", "request_result", map[string]any{"request_id": "a"})

	entries := logs.All()
	if len(entries) != 1 || entries[0].ContextMap()["run_id"] != "r-1" {
		t.Fatalf("run_id not bound: %#v", entries)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Fatalf("parseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if _, err := Init(&config.Config{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPackageHelpersNoopBeforeInit(t *testing.T) {
	global = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var nop NopLogger
	if nop.With("k", 1) != &nop {
		t.Fatalf("NopLogger.With should return itself")
	}
}
