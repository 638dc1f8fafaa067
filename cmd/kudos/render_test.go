package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"kudos/internal/ipc"
)

func TestFormatStatusLine(t *testing.T) {
	tests := []struct {
		name string
		line statusLine
		want string
	}{
		{
			name: "ok with detail",
			line: statusLine{"Kudos", statusOK, "Running (pid 42)"},
			want: "  Kudos:           [OK] Running (pid 42)",
		},
		{
			name: "warn with detail",
			line: statusLine{"Last reload", statusWarn, "09:15:00 (failed: timeout)"},
			want: "  Last reload:     [WARN] 09:15:00 (failed: timeout)",
		},
		{
			name: "info without detail",
			line: statusLine{"User", statusInfo, ""},
			want: "  User:            [INFO]",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatStatusLine(tc.line, false); got != tc.want {
				t.Errorf("formatStatusLine() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatStatusLineColorized(t *testing.T) {
	got := formatStatusLine(statusLine{"Kudos", statusOK, "Running"}, true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Errorf("colorized OK line = %q, want green wrapping", got)
	}
	got = formatStatusLine(statusLine{"Kudos", statusWarn, "Not running"}, true)
	if !strings.HasPrefix(got, ansiYellow) {
		t.Errorf("colorized WARN line = %q, want yellow prefix", got)
	}
}

func TestPrintStatusSection(t *testing.T) {
	var buf bytes.Buffer
	printStatusSection(&buf, "Daemon", []statusLine{
		{"Kudos", statusOK, "Running (pid 42)"},
	}, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("section line count = %d, want 3: %q", len(lines), lines)
	}
	if lines[0] != "== Daemon ==" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Errorf("rule = %q, want dashes matching header width", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Running (pid 42)") {
		t.Errorf("status line = %q", lines[2])
	}
}

func TestMarkReadCell(t *testing.T) {
	tests := []struct {
		name  string
		entry ipc.HistoryEntry
		want  string
	}{
		{"not acknowledged", ipc.HistoryEntry{}, "-"},
		{"marked read", ipc.HistoryEntry{Acknowledged: true, MarkReadOK: true}, "yes"},
		{"mark read failed", ipc.HistoryEntry{Acknowledged: true, MarkReadError: "store unreachable"}, "no: store unreachable"},
		{"mark read pending", ipc.HistoryEntry{Acknowledged: true}, "no"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := markReadCell(tc.entry); got != tc.want {
				t.Errorf("markReadCell() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderPendingTable(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	out := renderPendingTable([]ipc.Notification{
		{ID: "n-1", Title: "Seven day streak", AchievementType: "streak", CreatedAt: created},
		{ID: "n-2", Title: "Fastest 5k", AchievementType: "personal_record", CreatedAt: created.Add(time.Minute)},
	})
	for _, want := range []string{"Seven day streak", "Fastest 5k", "streak", "personal_record", "Title", "Created"} {
		if !strings.Contains(out, want) {
			t.Errorf("pending table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistoryTable(t *testing.T) {
	shown := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	out := renderHistoryTable([]ipc.HistoryEntry{
		{Title: "Seven day streak", AchievementType: "streak", ShownAt: shown, Acknowledged: true, MarkReadOK: true},
		{Title: "Fastest 5k", AchievementType: "personal_record", ShownAt: shown.Add(time.Minute)},
	})
	for _, want := range []string{"Seven day streak", "Fastest 5k", "Marked Read", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%s", want, out)
		}
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Error("shouldColorize(buffer) = true, want false")
	}
}
