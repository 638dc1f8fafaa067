package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"kudos/internal/ipc"
)

// Terminal presentation for the kudos command surface: achievement tables and
// the sectioned status screen.

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderPendingTable(items []ipc.Notification) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Type", "Created"})
	for i, item := range items {
		tw.AppendRow(table.Row{
			i + 1,
			item.Title,
			item.AchievementType,
			item.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: 48},
	})
	return tw.Render()
}

func renderHistoryTable(entries []ipc.HistoryEntry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Shown", "Title", "Type", "Acked", "Marked Read"})
	for _, entry := range entries {
		tw.AppendRow(table.Row{
			entry.ShownAt.Local().Format("2006-01-02 15:04:05"),
			entry.Title,
			entry.AchievementType,
			yesNo(entry.Acknowledged),
			markReadCell(entry),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 48}})
	return tw.Render()
}

// markReadCell summarizes the fire-and-forget mark-read outcome for one
// presentation row.
func markReadCell(entry ipc.HistoryEntry) string {
	switch {
	case !entry.Acknowledged:
		return "-"
	case entry.MarkReadOK:
		return "yes"
	case entry.MarkReadError != "":
		return "no: " + entry.MarkReadError
	default:
		return "no"
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// statusKind covers the severities the status screen emits. Delivery never
// surfaces hard errors here: a broken store or feed degrades to warnings.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

func printStatusSection(w io.Writer, title string, lines []statusLine, colorize bool) {
	header := fmt.Sprintf("== %s ==", title)
	rule := strings.Repeat("-", len(header))
	if colorize {
		header = ansiBlue + header + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)
	for _, line := range lines {
		fmt.Fprintln(w, formatStatusLine(line, colorize))
	}
}

func formatStatusLine(line statusLine, colorize bool) string {
	tag := "INFO"
	color := ansiBlue
	switch line.kind {
	case statusOK:
		tag = "OK"
		color = ansiGreen
	case statusWarn:
		tag = "WARN"
		color = ansiYellow
	}
	formatted := fmt.Sprintf("  %-16s [%s]", line.label+":", tag)
	if line.detail != "" {
		formatted += " " + line.detail
	}
	if colorize {
		return color + formatted + ansiReset
	}
	return formatted
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
