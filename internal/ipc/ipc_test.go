package ipc_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/celebrate"
	"kudos/internal/config"
	"kudos/internal/daemon"
	"kudos/internal/ipc"
	"kudos/internal/journal"
)

type fakeStore struct {
	mu     sync.Mutex
	items  []achievement.Notification
	marked []string
}

func (s *fakeStore) LoadUnread(context.Context, string) ([]achievement.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]achievement.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, id)
	return nil
}

type fixture struct {
	client *ipc.Client
	store  *fakeStore
}

func newFixture(t *testing.T, items []achievement.Notification) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Store.BaseURL = "https://activity.example.com"
	cfg.Store.UserID = "u-1"
	cfg.LiveFeed.Enabled = false
	cfg.Delivery.SettlingDelayMS = 1
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = cfg.Paths.StateDir

	journalStore, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { journalStore.Close() })

	store := &fakeStore{items: items}
	d, err := daemon.New(daemon.Options{
		Config:     &cfg,
		Loader:     store,
		Marker:     store,
		Journal:    journalStore,
		Celebrator: celebrate.NewService(&cfg),
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socketPath := filepath.Join(cfg.Paths.StateDir, "kudosd.sock")
	server, err := ipc.NewServer(ctx, socketPath, d, nil, cancel)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	client, err := ipc.Dial(socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return &fixture{client: client, store: store}
}

func waitForShowing(t *testing.T, client *ipc.Client, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := client.Status()
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if status.Showing != nil && status.Showing.ID == id {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to be showing", id)
}

func notif(id, title string, createdAt time.Time) achievement.Notification {
	return achievement.Notification{
		ID:            id,
		UserID:        "u-1",
		AchievementID: "a-" + id,
		CreatedAt:     createdAt,
		Achievement: achievement.Achievement{
			Type:  achievement.TypePersonalBest,
			Title: title,
		},
	}
}

func TestStatusAndPendingOverSocket(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, []achievement.Notification{
		notif("n-1", "Fastest 5k", base),
		notif("n-2", "Longest ride", base.Add(time.Minute)),
	})

	waitForShowing(t, f.client, "n-1")

	status, err := f.client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("status.Running = false")
	}
	if status.State != "showing" {
		t.Fatalf("state = %q", status.State)
	}
	if status.Showing.Title != "Fastest 5k" {
		t.Fatalf("showing title = %q", status.Showing.Title)
	}

	pending, err := f.client.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending.Items) != 2 {
		t.Fatalf("pending = %d items, want 2", len(pending.Items))
	}
	if pending.Items[0].ID != "n-1" || pending.Items[1].ID != "n-2" {
		t.Fatalf("pending order = %v, %v", pending.Items[0].ID, pending.Items[1].ID)
	}
}

func TestDismissOverSocket(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, []achievement.Notification{
		notif("n-1", "Fastest 5k", base),
		notif("n-2", "Longest ride", base.Add(time.Minute)),
	})
	waitForShowing(t, f.client, "n-1")

	resp, err := f.client.Dismiss("n-1")
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if !resp.Dismissed {
		t.Fatalf("Dismissed = false: %s", resp.Message)
	}

	// The same dismissal again is a polite no-op.
	resp, err = f.client.Dismiss("n-1")
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if resp.Dismissed {
		t.Fatal("duplicate dismiss reported success")
	}

	waitForShowing(t, f.client, "n-2")
}

func TestHistoryOverSocket(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, []achievement.Notification{notif("n-1", "Fastest 5k", base)})
	waitForShowing(t, f.client, "n-1")

	if _, err := f.client.Dismiss(""); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		history, err := f.client.History(10)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(history.Entries) == 1 && history.Entries[0].Acknowledged {
			entry := history.Entries[0]
			if entry.NotificationID != "n-1" || !entry.MarkReadOK {
				t.Fatalf("unexpected history entry: %+v", entry)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("acknowledged history entry never appeared: %+v", history.Entries)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTestNotificationOverSocket(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := f.client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if !resp.Sent {
		t.Fatalf("Sent = false: %s", resp.Message)
	}
}

func TestReloadOverSocket(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, nil)

	status, err := f.client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Showing != nil {
		t.Fatal("nothing should be showing yet")
	}

	f.store.mu.Lock()
	f.store.items = []achievement.Notification{notif("n-1", "Fastest 5k", base)}
	f.store.mu.Unlock()

	if _, err := f.client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	waitForShowing(t, f.client, "n-1")
}
