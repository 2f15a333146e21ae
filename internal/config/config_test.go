package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" || cfg.LogDir != "logs" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Workers != 5 || cfg.QueueSize != 1024 || cfg.TargetsFile != "config.json" {
		t.Fatalf("unexpected pool/catalog defaults: %+v", cfg)
	}
	if cfg.RecheckInterval != 0 || cfg.PublicRPM != 0 || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}

func TestFromEnv_ParsesEnvironment(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_STDOUT", "true")
	t.Setenv("TARGETS_FILE", "/etc/healthcheck/targets.json")
	t.Setenv("WORKERS", "7")
	t.Setenv("QUEUE_SIZE", "16")
	t.Setenv("RECHECK_INTERVAL", "15s")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("PUBLIC_BURST", "22")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" || cfg.LogLevel != "debug" || !cfg.LogStdout {
		t.Fatalf("addr/log settings wrong: %+v", cfg)
	}
	if cfg.TargetsFile != "/etc/healthcheck/targets.json" || cfg.Workers != 7 || cfg.QueueSize != 16 {
		t.Fatalf("catalog/pool settings wrong: %+v", cfg)
	}
	if cfg.RecheckInterval != 15*time.Second || cfg.PublicRPM != 111 || cfg.PublicBurst != 22 {
		t.Fatalf("recheck/rate settings wrong: %+v", cfg)
	}
}

func TestFromEnv_ConfigFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healthcheck.yaml")
	content := "workers: 3\nlog_level: warn\napi_addr: \"0.0.0.0:7000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WORKERS", "9")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Workers != 9 {
		t.Fatalf("env should win over file, got workers=%d", cfg.Workers)
	}
	if cfg.LogLevel != "warn" || cfg.Addr != "0.0.0.0:7000" {
		t.Fatalf("file values missing: %+v", cfg)
	}
}

func TestFromEnv_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"WORKERS":   "0",
		"API_ADDR":  "no-port",
		"LOG_LEVEL": "loud",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := FromEnv()
			if err == nil {
				t.Fatalf("want error for %s=%q", key, val)
			}
			if !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFromEnv_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := FromEnv(); err == nil {
		t.Fatalf("want error for missing config file")
	}
}
