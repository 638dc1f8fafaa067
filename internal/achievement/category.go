package achievement

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups achievement types for presentation: a short key used in
// push tags, a human label, an emoji, and whether the celebration should be
// delivered at high priority.
type Category struct {
	Key          string
	Label        string
	Emoji        string
	HighPriority bool
}

var categories = map[Type]Category{
	TypeStreak:            {Key: "streak", Label: "Streak", Emoji: "\U0001F525"},
	TypePersonalBest:      {Key: "personal-best", Label: "Personal Best", Emoji: "\U0001F3C6"},
	TypeRiskThresholdSafe: {Key: "risk-safe", Label: "Risk Threshold Cleared", Emoji: "\U0001F6E1"},
	TypeGoalComplete:      {Key: "goal", Label: "Goal Complete", Emoji: "\U0001F389", HighPriority: true},
}

var titleCaser = cases.Title(language.English)

// CategoryFor maps an achievement type to its presentation category. Unknown
// types get a generated label from the raw type value and the general
// fallback styling rather than failing.
func CategoryFor(t Type) Category {
	if cat, ok := categories[t]; ok {
		return cat
	}
	label := strings.TrimSpace(strings.ReplaceAll(string(t), "-", " "))
	if label == "" {
		label = "Achievement"
	} else {
		label = titleCaser.String(label)
	}
	return Category{Key: "general", Label: label, Emoji: "\U0001F3C5"}
}
