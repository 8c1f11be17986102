// Package tui renders CLI output: styled run reports, rule tables, and
// progress indicators. No interactive widgets, just clean streaming output.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/seqflow/seqflow/pkg/rules"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// RunReport summarizes a preparation or full pipeline run.
type RunReport struct {
	RunID      string
	Records    int
	Sessions   int
	Symbols    int
	Rules      int
	Malformed  int
	Duration   time.Duration
	OutputPath string
}

// PrintRunReport prints the post-run summary.
func PrintRunReport(report *RunReport) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ RUN COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Run:"), titleStyle.Render(report.RunID))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Records:"), titleStyle.Render(formatNumber(int64(report.Records))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Sessions:"), titleStyle.Render(formatNumber(int64(report.Sessions))))
	if report.Symbols > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Symbols:"), titleStyle.Render(formatNumber(int64(report.Symbols))))
	}
	if report.Rules > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Rules:"), titleStyle.Render(formatNumber(int64(report.Rules))))
	}
	if report.Malformed > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Malformed:"), accentStyle.Render(formatNumber(int64(report.Malformed))))
	}
	if report.Duration > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(report.Duration)))
	}
	if report.OutputPath != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Output:"), titleStyle.Render(report.OutputPath))
	}
	fmt.Println()
}

// PrintRuleTable renders a decomposed rule table.
func PrintRuleTable(table rules.Table, limit int) {
	if limit <= 0 || limit > len(table.Rows) {
		limit = len(table.Rows)
	}

	fmt.Println()
	fmt.Printf("  %-34s %-22s %8s %10s %8s\n",
		mutedStyle.Render("LHS"),
		mutedStyle.Render("RHS"),
		mutedStyle.Render("support"),
		mutedStyle.Render("confidence"),
		mutedStyle.Render("lift"))

	for _, row := range table.Rows[:limit] {
		rhs := accentStyle.Render("<malformed>")
		if row.RHS != nil {
			rhs = truncate(*row.RHS, 22)
		}
		fmt.Printf("  %-34s %-22s %8.3f %10.3f %8.3f\n",
			truncate(row.LHS, 34), rhs, row.Support, row.Confidence, row.Lift)
	}

	if limit < len(table.Rows) {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("  … %d more rows", len(table.Rows)-limit)))
	}
	fmt.Println()
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r\033[K")
}

// ShowProgress creates a progress bar for processing.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return s[:max-1] + "…"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
