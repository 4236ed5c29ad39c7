package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "jsonfetch" {
		t.Fatalf("app_name = %q", cfg.AppName)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("storage_type = %q", cfg.StorageType)
	}
	if cfg.HistoryTTL != 7*24*time.Hour || cfg.HistoryCleanup != 12*time.Hour {
		t.Fatalf("history durations = %v / %v", cfg.HistoryTTL, cfg.HistoryCleanup)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("REQUESTS_FILE", "/tmp/batch.json")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestsFile != "/tmp/batch.json" || cfg.LogLevel != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
