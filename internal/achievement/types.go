package achievement

import (
	"encoding/json"
	"sort"
	"time"
)

// Type classifies an achievement event. The set is open ended: the activity
// store may emit types this client has never seen, and those fall back to the
// general category during presentation.
type Type string

const (
	TypeStreak            Type = "streak"
	TypePersonalBest      Type = "personal-best"
	TypeRiskThresholdSafe Type = "risk-threshold-safe"
	TypeGoalComplete      Type = "goal-complete"
)

// Achievement is an immutable snapshot owned by the activity store. It is
// embedded by value into a Notification at fetch time.
type Achievement struct {
	ID          string          `json:"id"`
	TeamID      string          `json:"team_id"`
	Type        Type            `json:"achievement_type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	AchievedAt  time.Time       `json:"achieved_at"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	// Celebrated is informational only; queue membership is driven by
	// Notification.IsRead, never by this flag.
	Celebrated bool `json:"celebrated"`
}

// Notification references an achievement earned for a specific user. IsRead
// is the authoritative membership flag for the pending queue; CreatedAt
// defines FIFO presentation order.
type Notification struct {
	ID            string      `json:"id"`
	TeamID        string      `json:"team_id"`
	UserID        string      `json:"user_id"`
	AchievementID string      `json:"achievement_id"`
	Achievement   Achievement `json:"achievement"`
	IsRead        bool        `json:"is_read"`
	CreatedAt     time.Time   `json:"created_at"`
}

// SortByCreatedAt orders notifications created_at ascending. The sort is
// stable so ties keep their original fetch order.
func SortByCreatedAt(items []Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
