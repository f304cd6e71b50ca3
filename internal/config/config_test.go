package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("unexpected path %q", resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != ":3000" || cfg.BroadcastInterval != def.BroadcastInterval || cfg.RateLimit != def.RateLimit {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[1].Name != "room-2" || cfg.Channels[1].PasswordHash == "" {
		t.Fatalf("unexpected default channels: %+v", cfg.Channels)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileReplacesChannelList(t *testing.T) {
	path := writeFile(t, `
addr: ":9000"
broadcast_interval: 2s
rate_limit:
  tokens: 5
  interval: 10s
channels:
  - name: lobby
`)

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.BroadcastInterval != 2*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RateLimit.Tokens != 5 || cfg.RateLimit.Interval != 10*time.Second {
		t.Fatalf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "lobby" || cfg.Channels[0].PasswordHash != "" {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
	// Untouched keys keep their defaults.
	if cfg.ShutdownTimeout != Default().ShutdownTimeout {
		t.Fatalf("shutdown timeout lost default: %v", cfg.ShutdownTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "addr: \":9000\"\n")

	t.Setenv("CHANCHAT_RATE_LIMIT_TOKENS", "7")
	t.Setenv("CHANCHAT_LOG_LEVEL", "debug")
	t.Setenv("CHANCHAT_ADDR", "127.0.0.1:8081")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateLimit.Tokens != 7 || cfg.LogLevel != "debug" || cfg.Addr != "127.0.0.1:8081" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadPortFallback(t *testing.T) {
	path := writeFile(t, "log_level: warn\n")
	t.Setenv("PORT", "4000")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("expected :4000, got %q", cfg.Addr)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := writeFile(t, "addr: [unclosed\n")
	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("expected read error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Channels = []Channel{{Name: "Room"}, {Name: "ok"}, {Name: "ok"}}
	cfg.RateLimit.Tokens = 0
	cfg.TLSCertFile = "cert.pem"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{`channel "Room"`, `"ok" is listed twice`, "rate_limit.tokens", "tls_cert_file"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1", LogLevel: "debug"})

	if cfg.Addr != ":1" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("channels should be untouched: %+v", cfg.Channels)
	}
}
