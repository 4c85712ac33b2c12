package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - loading, warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for error messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconLoading = "…"
	iconIdle    = "·"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Package Summaries
// =============================================================================

// formatCount renders n compactly: 999, 1.2k, 3.4M, 5.6B.
func formatCount(n int64) string {
	switch {
	case n < 0:
		return "-" + formatCount(-n)
	case n < 1_000:
		return strconv.FormatInt(n, 10)
	case n < 1_000_000:
		return trimUnit(float64(n)/1_000, "k")
	case n < 1_000_000_000:
		return trimUnit(float64(n)/1_000_000, "M")
	default:
		return trimUnit(float64(n)/1_000_000_000, "B")
	}
}

func trimUnit(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		s = s[:len(s)-2]
	}
	return s + unit
}

// statusIcon returns the styled icon for a request status.
func statusIcon(s tracker.Status) string {
	switch s {
	case tracker.StatusSuccess:
		return styleIconSuccess.Render(iconSuccess)
	case tracker.StatusError:
		return styleIconError.Render(iconError)
	case tracker.StatusLoading:
		return styleIconWarning.Render(iconLoading)
	default:
		return StyleDim.Render(iconIdle)
	}
}

// latestRelease returns the newest release of s, or "—".
func latestRelease(s tracker.Summary) string {
	if n := len(s.Releases); n > 0 {
		r := s.Releases[n-1]
		if t, ok := series.ParseTimestamp(r.Date); ok {
			return r.Version + " (" + t.Format("2006-01-02") + ")"
		}
		return r.Version
	}
	return "—"
}

// summaryTable renders summaries as a bordered table. The row at cursor is
// highlighted; pass -1 for no cursor.
func summaryTable(summaries []tracker.Summary, cursor int) string {
	rows := make([][]string, 0, len(summaries))
	for i, s := range summaries {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		last := "—"
		if s.Status == tracker.StatusSuccess || s.TotalDownloads > 0 {
			last = formatCount(s.LastDayDownloads)
		}
		rows = append(rows, []string{
			marker + statusIcon(s.Status),
			s.PackageName,
			formatCount(s.TotalDownloads),
			last,
			strconv.Itoa(len(s.Points)),
			strconv.Itoa(len(s.Releases)),
			latestRelease(s),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Total", "Last day", "Weeks", "Releases", "Latest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().PaddingRight(1)
			if row < 0 || row >= len(summaries) {
				return base
			}
			if col == 1 {
				base = base.Foreground(lipgloss.Color(series.Color(row)))
			}
			if col >= 2 && col <= 5 {
				base = base.Foreground(colorCyan).Align(lipgloss.Right)
			}
			if row == cursor {
				base = base.Bold(true)
			}
			return base
		})
	return t.Render()
}
