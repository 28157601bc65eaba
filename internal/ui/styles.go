// Package ui handles terminal UI rendering.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green
	ColorWarning   = lipgloss.Color("3")   // Yellow
	ColorDanger    = lipgloss.Color("1")   // Red
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
	ColorLog       = lipgloss.Color("10")  // Lime, the classic console look
	ColorLogBg     = lipgloss.Color("0")   // Black
)

// Styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	// Modal dialogs
	NoticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 3)

	NoticeErrorStyle = NoticeStyle.
				BorderForeground(ColorDanger)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Label of the focused field
	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Matched runes in the composition filter
	MatchStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Underline(true)

	CompStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	LogStyle = lipgloss.NewStyle().
			Foreground(ColorLog).
			Background(ColorLogBg)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Symbols
const (
	SymbolCursor  = "›"
	SymbolPrev    = "‹"
	SymbolDone    = "✓"
	SymbolError   = "✖"
	SymbolRunning = "●"
	SymbolDivider = "─"
)
