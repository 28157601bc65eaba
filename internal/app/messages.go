package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/aerun/internal/config"
	"github.com/henri123lemoine/aerun/internal/render"
)

// Message types for the bubbletea app.

// CompsLoadedMsg is sent when a composition listing finishes.
type CompsLoadedMsg struct {
	Project string
	Comps   []string
}

// RenderLineMsg carries one line of renderer output.
type RenderLineMsg struct {
	Line string

	// stream is the channel the next message of the same render arrives on.
	stream <-chan tea.Msg
}

// RenderDoneMsg is sent once per render, whatever the exit status.
type RenderDoneMsg struct {
	Result render.Result
}

// SettingsSavedMsg is sent when the settings dialog has been saved.
type SettingsSavedMsg struct {
	Paths config.Paths
	Err   error
}

// RevealedMsg is sent after asking the OS to show a rendered file.
type RevealedMsg struct {
	Path string
	Err  error
}
