package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kudos/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[store]
base_url = "https://activity.example.com/"
user_id = "u-1"

[delivery]
settling_delay_ms = 250
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Store.BaseURL != "https://activity.example.com" {
		t.Fatalf("base_url not trimmed: %q", cfg.Store.BaseURL)
	}
	if cfg.Delivery.SettlingDelayMS != 250 {
		t.Fatalf("settling_delay_ms = %d, want 250", cfg.Delivery.SettlingDelayMS)
	}
	if cfg.Delivery.RefreshInterval != 120 {
		t.Fatalf("refresh_interval default = %d, want 120", cfg.Delivery.RefreshInterval)
	}
	if cfg.Store.RequestTimeout != 10 {
		t.Fatalf("request_timeout default = %d, want 10", cfg.Store.RequestTimeout)
	}
}

func TestLoadDerivesFeedURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"https", "https://activity.example.com", "wss://activity.example.com/api/v1/notifications/feed"},
		{"http", "http://localhost:8080", "ws://localhost:8080/api/v1/notifications/feed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, `
[store]
base_url = "`+tc.baseURL+`"
user_id = "u-1"
`)
			cfg, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.LiveFeed.URL != tc.want {
				t.Fatalf("feed url = %q, want %q", cfg.LiveFeed.URL, tc.want)
			}
		})
	}
}

func TestLoadExplicitFeedURLWins(t *testing.T) {
	path := writeConfig(t, `
[store]
base_url = "https://activity.example.com"
user_id = "u-1"

[live_feed]
url = "wss://feed.example.com/changes"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LiveFeed.URL != "wss://feed.example.com/changes" {
		t.Fatalf("explicit feed url overridden: %q", cfg.LiveFeed.URL)
	}
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "missing base url",
			contents: "[store]\nuser_id = \"u-1\"\n",
			wantErr:  "store.base_url",
		},
		{
			name:     "missing user id",
			contents: "[store]\nbase_url = \"https://a.example.com\"\n",
			wantErr:  "store.user_id",
		},
		{
			name: "settling delay out of range",
			contents: `[store]
base_url = "https://a.example.com"
user_id = "u-1"

[delivery]
settling_delay_ms = 9000
`,
			wantErr: "settling_delay_ms",
		},
		{
			name: "bad log format",
			contents: `[store]
base_url = "https://a.example.com"
user_id = "u-1"

[logging]
format = "yaml"
`,
			wantErr: "logging.format",
		},
		{
			name: "bad feed scheme",
			contents: `[store]
base_url = "https://a.example.com"
user_id = "u-1"

[live_feed]
url = "https://feed.example.com"
`,
			wantErr: "live_feed.url",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaultsButStillValidates(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	_, resolved, exists, err := config.Load(missing)
	if err == nil {
		t.Fatal("expected validation error for empty store settings")
	}
	_ = resolved
	_ = exists
}

func TestStatePathsDeriveFromStateDir(t *testing.T) {
	path := writeConfig(t, `
[store]
base_url = "https://a.example.com"
user_id = "u-1"

[paths]
state_dir = "/tmp/kudos-test-state"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SocketPath() != "/tmp/kudos-test-state/kudosd.sock" {
		t.Fatalf("socket path = %q", cfg.SocketPath())
	}
	if cfg.JournalPath() != "/tmp/kudos-test-state/journal.db" {
		t.Fatalf("journal path = %q", cfg.JournalPath())
	}
	if cfg.LockPath() != "/tmp/kudos-test-state/kudosd.lock" {
		t.Fatalf("lock path = %q", cfg.LockPath())
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[store]") {
		t.Fatalf("sample missing store section: %q", string(data))
	}
}
