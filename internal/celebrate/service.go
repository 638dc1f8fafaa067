package celebrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/config"
)

const userAgent = "Kudos-Go/0.1.0"

// Service is the celebration surface used by the delivery engine.
type Service interface {
	CelebrateAchievement(ctx context.Context, item achievement.Notification) error
	TestNotification(ctx context.Context) error
}

// NewService builds a celebration service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewNtfyService constructs an ntfy-backed service with an explicit endpoint
// and client, used by tests.
func NewNtfyService(endpoint string, client *http.Client) Service {
	return &ntfyService{endpoint: endpoint, client: client}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) CelebrateAchievement(ctx context.Context, item achievement.Notification) error {
	cat := achievement.CategoryFor(item.Achievement.Type)

	title := strings.TrimSpace(item.Achievement.Title)
	if title == "" {
		title = cat.Label
	}

	var builder strings.Builder
	builder.WriteString(cat.Emoji)
	builder.WriteByte(' ')
	builder.WriteString(cat.Label)
	if desc := strings.TrimSpace(item.Achievement.Description); desc != "" {
		builder.WriteString(": ")
		builder.WriteString(desc)
	}

	data := payload{
		title:   fmt.Sprintf("Kudos - %s", title),
		message: builder.String(),
		tags:    []string{"kudos", "achievement", cat.Key},
	}
	if cat.HighPriority {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Kudos - Test",
		message:  "Notification system test",
		tags:     []string{"kudos", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) CelebrateAchievement(context.Context, achievement.Notification) error { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
