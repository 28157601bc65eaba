package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/aerun/internal/config"
	"github.com/henri123lemoine/aerun/internal/render"
)

// Commands

// streamBuffer bounds how far a render may run ahead of the UI.
const streamBuffer = 64

func listComps(ctx context.Context, l Lister, project string) tea.Cmd {
	return func() tea.Msg {
		return CompsLoadedMsg{Project: project, Comps: l.List(ctx, project)}
	}
}

// startRender launches job and returns its first message. Every later
// message arrives through the channel carried by RenderLineMsg, so lines of
// one render reach Update in output order and RenderDoneMsg comes last.
func startRender(ctx context.Context, r Renderer, job render.Job) tea.Cmd {
	return func() tea.Msg {
		stream := make(chan tea.Msg, streamBuffer)
		r.Start(ctx, job,
			func(line string) {
				stream <- RenderLineMsg{Line: line, stream: stream}
			},
			func(res render.Result) {
				stream <- RenderDoneMsg{Result: res}
				close(stream)
			},
		)
		return listen(stream)()
	}
}

// listen waits for the next message of a render.
func listen(stream <-chan tea.Msg) tea.Cmd {
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-stream
		if !ok {
			return nil
		}
		return msg
	}
}

func saveSettings(s Settings, p config.Paths) tea.Cmd {
	return func() tea.Msg {
		err := s.Update(p)
		return SettingsSavedMsg{Paths: p, Err: err}
	}
}

func reveal(fn func(string) error, path string) tea.Cmd {
	return func() tea.Msg {
		return RevealedMsg{Path: path, Err: fn(path)}
	}
}
