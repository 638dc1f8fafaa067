package ipc

import "time"

// Notification is the wire representation of a pending or showing
// notification.
type Notification struct {
	ID              string    `json:"id"`
	AchievementID   string    `json:"achievement_id"`
	AchievementType string    `json:"achievement_type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	AchievedAt      time.Time `json:"achieved_at"`
}

// StatusRequest asks for the daemon status snapshot.
type StatusRequest struct{}

// StatusResponse reports daemon and sequencer state.
type StatusResponse struct {
	Running         bool          `json:"running"`
	PID             int           `json:"pid"`
	StartedAt       time.Time     `json:"started_at"`
	UserID          string        `json:"user_id"`
	State           string        `json:"state"`
	Showing         *Notification `json:"showing,omitempty"`
	PendingCount    int           `json:"pending_count"`
	Settling        bool          `json:"settling"`
	LiveFeed        bool          `json:"live_feed"`
	LastReloadAt    time.Time     `json:"last_reload_at"`
	LastReloadError string        `json:"last_reload_error,omitempty"`
}

// PendingRequest asks for the queue contents.
type PendingRequest struct{}

// PendingResponse lists pending notifications in presentation order.
type PendingResponse struct {
	Items []Notification `json:"items"`
}

// DismissRequest acknowledges the showing notification. An empty
// NotificationID dismisses whatever is showing.
type DismissRequest struct {
	NotificationID string `json:"notification_id"`
}

// DismissResponse reports the dismissal outcome.
type DismissResponse struct {
	Dismissed bool   `json:"dismissed"`
	Message   string `json:"message"`
}

// ReloadRequest forces a full reload from the store.
type ReloadRequest struct{}

// ReloadResponse acknowledges the reload trigger.
type ReloadResponse struct {
	Requested bool `json:"requested"`
}

// HistoryRequest asks for recent presentation journal entries.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryEntry is one journal row on the wire.
type HistoryEntry struct {
	PresentationID  string    `json:"presentation_id"`
	NotificationID  string    `json:"notification_id"`
	AchievementID   string    `json:"achievement_id"`
	AchievementType string    `json:"achievement_type"`
	Title           string    `json:"title"`
	ShownAt         time.Time `json:"shown_at"`
	AckedAt         time.Time `json:"acked_at,omitempty"`
	Acknowledged    bool      `json:"acknowledged"`
	MarkReadOK      bool      `json:"mark_read_ok"`
	MarkReadError   string    `json:"mark_read_error,omitempty"`
}

// HistoryResponse lists journal entries, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// TestNotificationRequest triggers a test push.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the test push outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse acknowledges the shutdown request.
type StopResponse struct {
	Stopping bool `json:"stopping"`
}
