package ui

import (
	"strings"
	"testing"
)

var formHelp = []HelpBinding{
	{Keys: "tab", Desc: "next"},
	{Keys: "ctrl+o", Desc: "browse"},
	{Keys: "ctrl+r", Desc: "render"},
	{Keys: "f1", Desc: "help"},
}

func TestRenderFormShowsFieldsAndLog(t *testing.T) {
	out := Render(RenderParams{
		State:        StateForm,
		Width:        100,
		Height:       30,
		Focus:        FieldComp,
		ProjectInput: "/shots/promo.aep",
		OutputInput:  "/renders/promo.mov",
		Comps:        []string{"Intro", "Main", "Outro"},
		CompIndex:    1,
		LogView:      "PROGRESS: 0:00:00:12 (13)",
		Running:      2,
		FormHelp:     formHelp,
	})

	for _, want := range []string{
		"After Effects Project (.aep)",
		"/shots/promo.aep",
		"Main",
		"(2/3)",
		"/renders/promo.mov",
		"PROGRESS: 0:00:00:12 (13)",
		"2 running",
		"ctrl+r render",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("form view missing %q", want)
		}
	}
}

func TestRenderFormListing(t *testing.T) {
	out := Render(RenderParams{State: StateForm, Width: 100, Height: 30, Listing: true, SpinnerFrame: "*"})
	if !strings.Contains(out, "Reading compositions...") {
		t.Error("expected listing indicator")
	}

	out = Render(RenderParams{State: StateForm, Width: 100, Height: 30})
	if !strings.Contains(out, "(no compositions)") {
		t.Error("expected empty composition placeholder")
	}
}

func TestRenderFormCompactHelp(t *testing.T) {
	out := Render(RenderParams{State: StateForm, Width: 60, Height: 30, FormHelp: formHelp})
	if strings.Contains(out, "ctrl+r render") {
		t.Error("narrow terminal should use compact help")
	}
	if !strings.Contains(out, "tab•^o•^r•f1") {
		t.Error("compact help missing")
	}
}

func TestFooterHelp(t *testing.T) {
	bindings := []HelpBinding{{Keys: "ctrl+r/f5", Desc: "render"}, {Keys: "f1", Desc: "help"}}
	if got := footerHelp(bindings, 100); got != "ctrl+r/f5 render • f1 help" {
		t.Errorf("footerHelp(wide) = %q", got)
	}
	if got := footerHelp(bindings, 60); got != "^r/f5•f1" {
		t.Errorf("footerHelp(narrow) = %q", got)
	}
}

func TestRenderNotice(t *testing.T) {
	out := Render(RenderParams{
		State:          StateNotice,
		Width:          80,
		Height:         20,
		Notice:         &Notice{Title: "Done", Body: "Render finished!\nOutput: /renders/promo.mov", CanReveal: true},
		PendingNotices: 1,
	})
	for _, want := range []string{"Render finished!", "Output: /renders/promo.mov", "o reveal", "+1 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("notice missing %q", want)
		}
	}

	out = Render(RenderParams{State: StateNotice, Width: 80, Height: 20, Notice: &Notice{Title: "Error", Body: "Please fill in all fields.", IsError: true}})
	if strings.Contains(out, "reveal") {
		t.Error("error notice should not offer reveal")
	}
}

func TestRenderNoticeWithoutNoticeFallsBack(t *testing.T) {
	out := Render(RenderParams{State: StateNotice, Width: 80, Height: 20})
	if !strings.Contains(out, "AERUN") {
		t.Error("expected form view when there is no notice")
	}
}

func TestRenderSelectComp(t *testing.T) {
	items := make([]CompItem, 40)
	for i := range items {
		items[i] = CompItem{Name: "Comp " + string(rune('A'+i%26))}
	}
	out := Render(RenderParams{
		State:       StateSelectComp,
		Width:       80,
		Height:      20,
		FilterInput: "> ",
		CompItems:   items,
		CompCursor:  25,
	})
	if !strings.Contains(out, "more above") || !strings.Contains(out, "more below") {
		t.Error("expected scroll indicators")
	}
	if !strings.Contains(out, "Comp Z") {
		t.Error("cursor row should be visible")
	}

	out = Render(RenderParams{State: StateSelectComp, Width: 80, Height: 20})
	if !strings.Contains(out, "No matching compositions.") {
		t.Error("expected empty state")
	}
}

func TestRenderHelp(t *testing.T) {
	out := Render(RenderParams{
		State:  StateHelp,
		Width:  80,
		Height: 30,
		HelpSections: []HelpSection{
			{Title: "Form", Bindings: []HelpBinding{{Keys: "ctrl+r", Desc: "start render"}}},
			{Title: "Log", Bindings: []HelpBinding{{Keys: "pgup", Desc: "scroll log up"}}},
		},
	})
	for _, want := range []string{"HELP", "Form", "start render", "Log", "scroll log up", "Press any key to close"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRenderSmallTerminal(t *testing.T) {
	// Must not panic on degenerate sizes.
	for _, state := range []int{StateForm, StateBrowse, StateSelectComp, StateSettings, StateHelp} {
		_ = Render(RenderParams{State: state, Width: 5, Height: 2})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, visible, total int
		start, end             int
	}{
		{0, 5, 3, 0, 3},
		{0, 5, 10, 0, 5},
		{4, 5, 10, 0, 5},
		{5, 5, 10, 1, 6},
		{9, 5, 10, 5, 10},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.visible, tt.total)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.cursor, tt.visible, tt.total, start, end, tt.start, tt.end)
		}
	}
}

func TestHighlightKeepsText(t *testing.T) {
	got := highlight(CompItem{Name: "Main Comp", Matched: []int{0, 5}}, NormalStyle)
	for _, r := range "MainComp" {
		if !strings.ContainsRune(got, r) {
			t.Errorf("highlight lost %q: %q", r, got)
		}
	}
}

func TestTruncateLeft(t *testing.T) {
	if got := truncateLeft("/a/b/c/aerender", 8); got != "…erender" {
		t.Errorf("truncateLeft = %q", got)
	}
	if got := truncateLeft("short", 10); got != "short" {
		t.Errorf("truncateLeft = %q, want unchanged", got)
	}
}

func TestLogSize(t *testing.T) {
	w, h := LogSize(100, 40)
	if w != 96 || h != 40-formChrome {
		t.Errorf("LogSize(100, 40) = (%d, %d)", w, h)
	}
	if _, h := LogSize(100, 5); h != minLogHeight {
		t.Errorf("short terminal log height = %d, want %d", h, minLogHeight)
	}
}
