package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Feed.Enabled {
		t.Error("feed should be disabled by default")
	}
	if !cfg.Sim.Enabled {
		t.Error("simulation should be enabled by default")
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default http addr, got %q", cfg.HTTPAddr)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleetmon.yaml")
	data := []byte(`
log_level: debug
http_addr: ":9090"
report_interval: 250ms
csv_path: vehicles.csv
sim:
  enabled: false
feed:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: telemetry
  workers: 8
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: got %q", cfg.LogLevel)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("http_addr: got %q", cfg.HTTPAddr)
	}
	if cfg.ReportInterval != 250*time.Millisecond {
		t.Errorf("report_interval: got %v", cfg.ReportInterval)
	}
	if cfg.Sim.Enabled {
		t.Error("sim should be disabled by the file")
	}
	if !cfg.Feed.Enabled || len(cfg.Feed.Brokers) != 2 || cfg.Feed.Workers != 8 {
		t.Errorf("feed not parsed: %+v", cfg.Feed)
	}
	// Unset keys keep their defaults.
	if cfg.Feed.QueueSize != 1000 {
		t.Errorf("feed.queue_size should default to 1000, got %d", cfg.Feed.QueueSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ReportInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero report_interval")
	}

	cfg = Default()
	cfg.Sim.Interval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative sim interval")
	}

	cfg = Default()
	cfg.Feed.Enabled = true
	cfg.Feed.Brokers = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for feed without brokers")
	}

	cfg = Default()
	cfg.Feed.Enabled = true
	cfg.Feed.Topic = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for feed without topic")
	}
}
