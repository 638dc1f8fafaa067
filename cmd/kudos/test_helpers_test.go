package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/config"
	"kudos/internal/daemon"
	"kudos/internal/ipc"
)

type fakeStore struct {
	mu    sync.Mutex
	items []achievement.Notification
}

func (s *fakeStore) LoadUnread(context.Context, string) ([]achievement.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]achievement.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) MarkRead(context.Context, string) error { return nil }

type cliTestEnv struct {
	cfg        *config.Config
	store      *fakeStore
	daemon     *daemon.Daemon
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T, items []achievement.Notification) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	stateDir := filepath.Join(base, "state")
	configPath := filepath.Join(homeDir, ".config", "kudos", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, stateDir)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store := &fakeStore{items: items}
	d, err := daemon.New(daemon.Options{
		Config: cfg,
		Loader: store,
		Marker: store,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, d, nil, cancel)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Stop()
	})

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		socketPath: socketPath,
		configPath: configPath,
	}
}

func writeTestConfig(t *testing.T, path, stateDir string) {
	t.Helper()
	content := fmt.Sprintf(`[store]
base_url = "https://activity.example.com"
api_token = "secret-token"
user_id = "u-1"

[live_feed]
enabled = false

[delivery]
settling_delay_ms = 1

[paths]
state_dir = %q
log_dir = %q
`, stateDir, filepath.Join(stateDir, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func testNotification(id, title string, createdAt time.Time) achievement.Notification {
	return achievement.Notification{
		ID:            id,
		UserID:        "u-1",
		AchievementID: "a-" + id,
		CreatedAt:     createdAt,
		Achievement: achievement.Achievement{
			Type:  achievement.TypeStreak,
			Title: title,
		},
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
