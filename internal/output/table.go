// Package output provides terminal output utilities: the status table, the
// backup listing and a spinner for long-running commands. Tables use ASCII
// characters and ANSI color codes; color is dropped when stdout is not a
// terminal or NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// countTableOrder fixes the row order of the status table: reference data
// first, then the entities filled by live events.
var countTableOrder = []string{
	"Added", "Category", "Item", "RareItem", "Ship", "Upgrade",
	"System", "Station", "StationItem", "ShipVendor", "UpgradeVendor",
}

// RenderCountTable renders the per-table row counts of the database.
func RenderCountTable(counts map[string]int64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-15s %10s\n", "Table", "Rows"))
	sb.WriteString(strings.Repeat("─", 26))
	sb.WriteString("\n")

	for _, table := range countTableOrder {
		n, ok := counts[table]
		if !ok {
			continue
		}
		row := fmt.Sprintf("%-15s %10d\n", table, n)
		if n == 0 {
			row = colorize(colorGray, row)
		}
		sb.WriteString(row)
	}
	return sb.String()
}

// BackupRow is one line of the backup listing.
type BackupRow struct {
	Name      string
	CreatedAt time.Time
	SizeBytes int64
	Reason    string
}

// RenderBackupTable renders the backup listing, newest first as given.
func RenderBackupTable(rows []BackupRow) string {
	if len(rows) == 0 {
		return "No backups found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-13s %-8s %s\n", "Name", "Created", "Size", "Reason"))
	sb.WriteString(strings.Repeat("─", 66))
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-28s %-13s %-8s %s\n",
			truncate(row.Name, 28),
			formatRelativeTime(row.CreatedAt),
			formatSize(row.SizeBytes),
			row.Reason))
	}
	return sb.String()
}

// formatSize formats a byte count in human-readable form.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatRelativeTime formats a timestamp relative to now ("3 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// truncate shortens a string to max characters, ellipsizing the tail.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
