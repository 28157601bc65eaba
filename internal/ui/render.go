package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// State constants (matching app.State)
const (
	StateForm = iota
	StateBrowse
	StateSelectComp
	StateSettings
	StateNotice
	StateHelp
)

// Field constants (matching app.Field)
const (
	FieldProject = iota
	FieldComp
	FieldOutput
)

// HelpBinding represents a keybinding for help display.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpSection represents a section of help bindings.
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// CompItem is one row of the composition selector.
type CompItem struct {
	Name    string
	Matched []int // byte offsets of runes matched by the filter
}

// Notice is a blocking message dialog.
type Notice struct {
	Title     string
	Body      string
	IsError   bool
	CanReveal bool
}

// RenderParams contains all parameters needed for rendering.
// Component views arrive already rendered.
type RenderParams struct {
	State  int
	Width  int
	Height int

	// Form
	Focus        int
	ProjectInput string
	OutputInput  string
	Comps        []string
	CompIndex    int
	Listing      bool
	SpinnerFrame string
	Renderer     string
	FormHelp     []HelpBinding

	// Log pane
	LogView string
	Running int

	// Project picker
	PickerView string
	PickerDir  string

	// Composition selector
	FilterInput string
	CompItems   []CompItem
	CompCursor  int

	// Settings dialog
	SettingsView string
	ConfigPath   string

	Notice         *Notice
	PendingNotices int

	HelpSections []HelpSection
}

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 30

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 8

// formChrome is the number of form lines that are not the log pane.
const formChrome = 16

// minLogHeight keeps a few log lines visible on short terminals.
const minLogHeight = 3

// LogSize returns the log viewport dimensions for a terminal of the given
// size.
func LogSize(width, height int) (int, int) {
	if width < MinWidth {
		width = MinWidth
	}
	h := height - formChrome
	if h < minLogHeight {
		h = minLogHeight
	}
	return width - 4, h
}

// SelectorVisible returns how many compositions fit in the selector.
func SelectorVisible(height int) int {
	// header, divider, blank, filter, blank, footer divider, help, borders
	n := height - 9
	if n < 3 {
		n = 3
	}
	return n
}

// Render renders the full UI.
func Render(p RenderParams) string {
	if p.Width < MinWidth {
		p.Width = MinWidth
	}
	if p.Height < MinHeight {
		p.Height = MinHeight
	}

	switch p.State {
	case StateBrowse:
		return renderBrowse(p)
	case StateSelectComp:
		return renderSelectComp(p)
	case StateSettings:
		return renderSettings(p)
	case StateNotice:
		return renderNotice(p)
	case StateHelp:
		return renderHelp(p)
	default:
		return renderForm(p)
	}
}

// renderForm renders the three fields above the log pane.
func renderForm(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	header := HeaderStyle.Render("AERUN")
	if p.Renderer != "" {
		header += "  " + PathStyle.Render(truncateLeft(p.Renderer, contentWidth-7))
	}
	b.WriteString(header + "\n")
	b.WriteString(divider(contentWidth) + "\n")

	b.WriteString(fieldLabel("After Effects Project (.aep)", p.Focus == FieldProject) + "\n")
	b.WriteString(p.ProjectInput + "\n")

	b.WriteString(fieldLabel("Composition", p.Focus == FieldComp) + "\n")
	b.WriteString(renderCompField(p) + "\n")

	b.WriteString(fieldLabel("Output File", p.Focus == FieldOutput) + "\n")
	b.WriteString(p.OutputInput + "\n\n")

	logHeader := HeaderStyle.Render("LOG")
	if p.Running > 0 {
		logHeader += "  " + RunningStyle.Render(fmt.Sprintf("%s %d running", SymbolRunning, p.Running))
	}
	b.WriteString(logHeader + "\n")
	b.WriteString(divider(contentWidth) + "\n")
	b.WriteString(p.LogView + "\n")

	b.WriteString(divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render(footerHelp(p.FormHelp, p.Width)))

	return wrapInBox(b.String(), p.Width, p.Height)
}

// renderCompField renders the composition dropdown line.
func renderCompField(p RenderParams) string {
	if p.Listing {
		return "  " + p.SpinnerFrame + " " + PathStyle.Render("Reading compositions...")
	}
	if len(p.Comps) == 0 {
		return "  " + PathStyle.Render("(no compositions)")
	}

	idx := p.CompIndex
	if idx < 0 || idx >= len(p.Comps) {
		idx = 0
	}
	name := CompStyle.Render(p.Comps[idx])
	count := PathStyle.Render(fmt.Sprintf("(%d/%d)", idx+1, len(p.Comps)))
	if p.Focus == FieldComp {
		return SelectedStyle.Render(SymbolPrev+" ") + name + SelectedStyle.Render(" "+SymbolCursor) + "  " + count +
			"  " + HelpStyle.Render("enter to search")
	}
	return "  " + name + "  " + count
}

func fieldLabel(label string, focused bool) string {
	if focused {
		return FocusedLabelStyle.Render(SymbolCursor + " " + label)
	}
	return LabelStyle.Render("  " + label)
}

// renderBrowse renders the project file picker.
func renderBrowse(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("OPEN PROJECT") + "  " + PathStyle.Render(truncateLeft(p.PickerDir, contentWidth-14)) + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	b.WriteString(p.PickerView + "\n")

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render(compactHelp(
		"↑/↓ move • enter open • ←/backspace up • esc cancel",
		"↑/↓•enter•←•esc",
		p.Width,
	)))

	return wrapInBox(b.String(), p.Width, p.Height)
}

// renderSelectComp renders the filtered composition selector.
func renderSelectComp(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("SELECT COMPOSITION") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	b.WriteString(p.FilterInput + "\n\n")

	if len(p.CompItems) == 0 {
		b.WriteString(PathStyle.Render("No matching compositions.") + "\n")
	} else {
		visible := SelectorVisible(p.Height)
		start, end := window(p.CompCursor, visible, len(p.CompItems))

		if start > 0 {
			b.WriteString(PathStyle.Render(fmt.Sprintf("  ↑ %d more above", start)) + "\n")
		}
		for i := start; i < end; i++ {
			item := p.CompItems[i]
			if i == p.CompCursor {
				b.WriteString(SelectedStyle.Render(SymbolCursor+" ") + highlight(item, SelectedStyle) + "\n")
			} else {
				b.WriteString("  " + highlight(item, NormalStyle) + "\n")
			}
		}
		if end < len(p.CompItems) {
			b.WriteString(PathStyle.Render(fmt.Sprintf("  ↓ %d more below", len(p.CompItems)-end)) + "\n")
		}
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("type to filter • ↑/↓ select • enter confirm • esc cancel"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

// window returns the visible range [start, end) that keeps cursor on screen.
func window(cursor, visible, total int) (int, int) {
	if visible >= total {
		return 0, total
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}

// highlight renders a composition name with its matched runes marked.
func highlight(item CompItem, base lipgloss.Style) string {
	if len(item.Matched) == 0 {
		return base.Render(item.Name)
	}
	matched := make(map[int]bool, len(item.Matched))
	for _, i := range item.Matched {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range item.Name {
		if matched[i] {
			b.WriteString(MatchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// renderSettings renders the paths dialog.
func renderSettings(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("AFTER EFFECTS PATHS") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	b.WriteString(p.SettingsView + "\n")
	if p.ConfigPath != "" {
		b.WriteString("\n" + PathStyle.Render("Saved to "+p.ConfigPath) + "\n")
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("enter next • shift+tab back • esc cancel"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

// renderNotice renders a blocking dialog centered on screen.
func renderNotice(p RenderParams) string {
	n := p.Notice
	if n == nil {
		return renderForm(p)
	}

	style := NoticeStyle
	title := TitleStyle.Render(n.Title)
	if n.IsError {
		style = NoticeErrorStyle
		title = ErrorStyle.Bold(true).Render(SymbolError + " " + n.Title)
	} else if n.Title != "" {
		title = StatusStyle.Bold(true).Render(SymbolDone + " " + n.Title)
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString(NormalStyle.Render(n.Body) + "\n\n")

	footer := "enter ok"
	if n.CanReveal {
		footer += " • o reveal"
	}
	if p.PendingNotices > 0 {
		footer += fmt.Sprintf("  (+%d more)", p.PendingNotices)
	}
	b.WriteString(HelpStyle.Render(footer))

	box := style.MaxWidth(p.Width).Render(b.String())
	return lipgloss.Place(p.Width, p.Height, lipgloss.Center, lipgloss.Center, box)
}

// renderHelp renders the help overlay.
func renderHelp(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("HELP") + "\n")
	b.WriteString(divider(contentWidth) + "\n\n")

	for i, section := range p.HelpSections {
		b.WriteString(CompStyle.Render(section.Title) + "\n")
		b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, 40)) + "\n")
		for _, binding := range section.Bindings {
			// Pad keys to 12 chars for alignment
			keys := binding.Keys
			if len(keys) < 12 {
				keys = keys + strings.Repeat(" ", 12-len(keys))
			}
			b.WriteString(PathStyle.Render("  "+keys) + " " + binding.Desc + "\n")
		}
		if i < len(p.HelpSections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + divider(contentWidth) + "\n")
	b.WriteString(HelpStyle.Render("Press any key to close"))

	return wrapInBox(b.String(), p.Width, p.Height)
}

func divider(width int) string {
	if width < 1 {
		width = 1
	}
	return DividerStyle.Render(strings.Repeat(SymbolDivider, width))
}

// truncateLeft keeps the tail of s, which is the informative end of a path.
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if width < 2 || len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

// wrapInBox wraps content in a box.
func wrapInBox(content string, width, height int) string {
	boxWidth := width - 2
	if boxWidth < MinWidth-2 {
		boxWidth = MinWidth - 2
	}

	// Don't force height - let content determine size
	style := BoxStyle.Width(boxWidth)

	return style.Render(content)
}

// footerHelp lays out bindings on one line, keys only on small terminals.
func footerHelp(bindings []HelpBinding, width int) string {
	full := make([]string, len(bindings))
	compact := make([]string, len(bindings))
	for i, b := range bindings {
		full[i] = b.Keys + " " + b.Desc
		compact[i] = strings.ReplaceAll(b.Keys, "ctrl+", "^")
	}
	return compactHelp(strings.Join(full, " • "), strings.Join(compact, "•"), width)
}

// compactHelp returns a shortened help string for small terminals.
func compactHelp(full, compact string, width int) string {
	if width >= 80 {
		return full
	}
	return compact
}
