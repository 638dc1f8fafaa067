package celebrate_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/celebrate"
	"kudos/internal/config"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func ntfyCapture(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		got.body = string(body)
	}))
	return server, got
}

func TestCelebrateAchievementSendsCategoryTags(t *testing.T) {
	server, got := ntfyCapture(t)
	defer server.Close()

	service := celebrate.NewNtfyService(server.URL, server.Client())
	item := achievement.Notification{
		ID: "n-1",
		Achievement: achievement.Achievement{
			Type:        achievement.TypeStreak,
			Title:       "7 day streak",
			Description: "Logged activity every day this week",
		},
	}
	if err := service.CelebrateAchievement(context.Background(), item); err != nil {
		t.Fatalf("CelebrateAchievement: %v", err)
	}
	if got.title != "Kudos - 7 day streak" {
		t.Fatalf("title = %q", got.title)
	}
	if got.tags != "kudos,achievement,streak" {
		t.Fatalf("tags = %q", got.tags)
	}
	if got.priority != "" {
		t.Fatalf("streak should not be high priority, got %q", got.priority)
	}
	if !strings.Contains(got.body, "Logged activity every day this week") {
		t.Fatalf("body = %q", got.body)
	}
}

func TestCelebrateGoalCompletionIsHighPriority(t *testing.T) {
	server, got := ntfyCapture(t)
	defer server.Close()

	service := celebrate.NewNtfyService(server.URL, server.Client())
	item := achievement.Notification{
		Achievement: achievement.Achievement{
			Type:  achievement.TypeGoalComplete,
			Title: "Quarterly savings goal",
		},
	}
	if err := service.CelebrateAchievement(context.Background(), item); err != nil {
		t.Fatalf("CelebrateAchievement: %v", err)
	}
	if got.priority != "high" {
		t.Fatalf("priority = %q, want high", got.priority)
	}
}

func TestCelebrateUnknownTypeFallsBack(t *testing.T) {
	server, got := ntfyCapture(t)
	defer server.Close()

	service := celebrate.NewNtfyService(server.URL, server.Client())
	item := achievement.Notification{
		Achievement: achievement.Achievement{Type: "mystery-badge"},
	}
	if err := service.CelebrateAchievement(context.Background(), item); err != nil {
		t.Fatalf("CelebrateAchievement: %v", err)
	}
	if got.tags != "kudos,achievement,general" {
		t.Fatalf("tags = %q", got.tags)
	}
	if got.title != "Kudos - Mystery Badge" {
		t.Fatalf("title = %q", got.title)
	}
}

func TestCelebrateSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := celebrate.NewNtfyService(server.URL, server.Client())
	err := service.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error missing status code: %v", err)
	}
}

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	service := celebrate.NewService(&cfg)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := service.CelebrateAchievement(ctx, achievement.Notification{}); err != nil {
		t.Fatalf("noop celebrate returned error: %v", err)
	}
	if err := service.TestNotification(ctx); err != nil {
		t.Fatalf("noop test returned error: %v", err)
	}
}
