package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != 8080 {
		t.Errorf("addr = %s:%d, want localhost:8080", cfg.Host, cfg.Port)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.ReadTimeout)
	}
	if cfg.MaxFastWorkers != 64 || cfg.MaxSlowWorkers != 4 {
		t.Errorf("workers = %d/%d, want 64/4", cfg.MaxFastWorkers, cfg.MaxSlowWorkers)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("log = %s/%s, want info/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.VariantsDir != "" {
		t.Errorf("VariantsDir = %q, want empty", cfg.VariantsDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TABLABAKI_HOST", "0.0.0.0")
	t.Setenv("TABLABAKI_PORT", "9090")
	t.Setenv("TABLABAKI_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("TABLABAKI_MAX_SLOW_WORKERS", "8")
	t.Setenv("TABLABAKI_VARIANTS_DIR", "/srv/variants")
	t.Setenv("TABLABAKI_LOG_LEVEL", "debug")
	t.Setenv("TABLABAKI_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	sc := cfg.ServerConfig()
	if sc.Host != "0.0.0.0" || sc.Port != 9090 {
		t.Errorf("addr = %s:%d, want 0.0.0.0:9090", sc.Host, sc.Port)
	}
	if sc.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", sc.ShutdownTimeout)
	}
	if sc.MaxSlowWorkers != 8 {
		t.Errorf("MaxSlowWorkers = %d, want 8", sc.MaxSlowWorkers)
	}
	if cfg.VariantsDir != "/srv/variants" {
		t.Errorf("VariantsDir = %q, want /srv/variants", cfg.VariantsDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad port type", "TABLABAKI_PORT", "eighty", "parse env:"},
		{"port out of range", "TABLABAKI_PORT", "70000", "invalid port"},
		{"bad duration", "TABLABAKI_READ_TIMEOUT", "soon", "parse env:"},
		{"bad level", "TABLABAKI_LOG_LEVEL", "loud", "invalid log level"},
		{"bad format", "TABLABAKI_LOG_FORMAT", "xml", "invalid log format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLogLevel(tc.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "game_id", "g1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["game_id"] != "g1" {
		t.Errorf("record = %v, want msg shown with game_id", rec)
	}

	buf.Reset()
	NewLogger(&buf, "info", "text").Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("text output = %q, want msg=plain", buf.String())
	}
}
