package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kudos/internal/achievement"
)

// HTTPDoer describes the HTTP client used by the store client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the notification API client for one activity store.
type Client struct {
	baseURL  string
	apiToken string
	client   HTTPDoer
}

// New constructs a store client. A nil doer falls back to an http.Client with
// the given timeout.
func New(baseURL, apiToken string, timeout time.Duration, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiToken: strings.TrimSpace(apiToken),
		client:   doer,
	}
}

type unreadResponse struct {
	Notifications []achievement.Notification `json:"notifications"`
}

// LoadUnread fetches every unread notification for the user. The server
// already filters read rows and orders by created_at; the result is sorted
// again locally so a misbehaving server cannot break presentation order.
func (c *Client) LoadUnread(ctx context.Context, userID string) ([]achievement.Notification, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/notifications?unread=true", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build unread request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch unread notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unread notifications returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var payload unreadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode unread notifications: %w", err)
	}
	achievement.SortByCreatedAt(payload.Notifications)
	return payload.Notifications, nil
}

// MarkRead marks one notification as read. The call is idempotent on the
// server side; callers do not retry here.
func (c *Client) MarkRead(ctx context.Context, notificationID string) error {
	endpoint := fmt.Sprintf("%s/api/v1/notifications/%s/read", c.baseURL, url.PathEscape(notificationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build mark-read request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("mark-read returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "(no body)"
	}
	return strings.TrimSpace(string(data))
}
