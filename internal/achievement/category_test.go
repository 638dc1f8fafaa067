package achievement

import (
	"testing"
	"time"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		name         string
		typ          Type
		wantKey      string
		wantLabel    string
		highPriority bool
	}{
		{name: "streak", typ: TypeStreak, wantKey: "streak", wantLabel: "Streak"},
		{name: "personal best", typ: TypePersonalBest, wantKey: "personal-best", wantLabel: "Personal Best"},
		{name: "risk threshold", typ: TypeRiskThresholdSafe, wantKey: "risk-safe", wantLabel: "Risk Threshold Cleared"},
		{name: "goal is high priority", typ: TypeGoalComplete, wantKey: "goal", wantLabel: "Goal Complete", highPriority: true},
		{name: "unknown type falls back", typ: Type("mystery-badge"), wantKey: "general", wantLabel: "Mystery Badge"},
		{name: "empty type falls back", typ: Type(""), wantKey: "general", wantLabel: "Achievement"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := CategoryFor(tc.typ)
			if cat.Key != tc.wantKey {
				t.Fatalf("Key = %q, want %q", cat.Key, tc.wantKey)
			}
			if cat.Label != tc.wantLabel {
				t.Fatalf("Label = %q, want %q", cat.Label, tc.wantLabel)
			}
			if cat.HighPriority != tc.highPriority {
				t.Fatalf("HighPriority = %v, want %v", cat.HighPriority, tc.highPriority)
			}
			if cat.Emoji == "" {
				t.Fatal("category has no emoji")
			}
		})
	}
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	items := []Notification{
		{ID: "n-3", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "n-1", CreatedAt: base},
		{ID: "n-2a", CreatedAt: base.Add(time.Minute)},
		{ID: "n-2b", CreatedAt: base.Add(time.Minute)},
	}

	SortByCreatedAt(items)

	got := []string{items[0].ID, items[1].ID, items[2].ID, items[3].ID}
	want := []string{"n-1", "n-2a", "n-2b", "n-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
