package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/henri123lemoine/aerun/internal/config"
	"github.com/henri123lemoine/aerun/internal/debug"
)

// openSettings shows the paths dialog prefilled with the live paths.
func (m Model) openSettings() (tea.Model, tea.Cmd) {
	var current config.Paths
	if m.deps.Settings != nil {
		current = m.deps.Settings.Paths()
	}
	m.settingsDraft = &current
	m.settingsForm = newSettingsForm(m.settingsDraft, m.config.UI.Theme, m.width)
	m.state = StateSettings
	return m, m.settingsForm.Init()
}

// updateSettings forwards msg to the paths dialog and acts on its outcome.
func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.settingsForm.Update(msg)
	m.settingsForm = form.(*huh.Form)

	switch m.settingsForm.State {
	case huh.StateCompleted:
		paths := config.Paths{
			Renderer:    strings.TrimSpace(m.settingsDraft.Renderer),
			Application: strings.TrimSpace(m.settingsDraft.Application),
		}
		m.closeSettings()
		if m.deps.Settings == nil || !paths.Complete() {
			return m, nil
		}
		debug.Log("app: saving paths %+v", paths)
		return m, saveSettings(m.deps.Settings, paths)
	case huh.StateAborted:
		m.closeSettings()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeSettings() {
	m.settingsForm = nil
	m.settingsDraft = nil
	m.state = StateForm
	m.showNextNotice()
}

// newSettingsForm builds the dialog editing draft in place.
func newSettingsForm(draft *config.Paths, theme string, width int) *huh.Form {
	keymap := huh.NewDefaultKeyMap()
	keymap.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("aerender").
				Title("aerender Path").
				Value(&draft.Renderer).
				Validate(required("aerender path")),
			huh.NewInput().
				Key("after_effects").
				Title("After Effects App Path").
				Value(&draft.Application).
				Validate(required("After Effects path")),
		),
	).
		WithKeyMap(keymap).
		WithTheme(formTheme(theme)).
		WithShowHelp(false)

	if width > 8 {
		form = form.WithWidth(width - 8)
	}
	return form
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

// formTheme maps ui.theme to a form theme.
func formTheme(name string) *huh.Theme {
	switch name {
	case "light":
		return huh.ThemeBase()
	case "dark":
		return huh.ThemeDracula()
	default:
		return huh.ThemeCharm()
	}
}
