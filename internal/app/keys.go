package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/henri123lemoine/aerun/internal/config"
)

// KeyMap defines all keybindings.
type KeyMap struct {
	// Form navigation
	Next key.Binding
	Prev key.Binding
	Up   key.Binding
	Down key.Binding

	// Actions
	Browse   key.Binding
	Render   key.Binding
	Settings key.Binding
	ClearLog key.Binding
	Reveal   key.Binding

	// Log pane
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// General
	Select key.Binding
	Cancel key.Binding
	Quit   key.Binding
	Help   key.Binding
}

// DefaultKeyMap returns the default key bindings.
// Plain letters are left to the text fields.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse project"),
		),
		Render: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "start render"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "set AE paths"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear log"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "reveal output"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll log up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll log down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
}

// KeyMapFromConfig creates a KeyMap from config settings.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	km := DefaultKeyMap()

	override := func(b *key.Binding, value, desc string) {
		if value == "" {
			return
		}
		keys := parseKeys(value)
		if len(keys) == 0 {
			return
		}
		*b = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), desc),
		)
	}

	override(&km.Next, cfg.Next, "next field")
	override(&km.Prev, cfg.Prev, "previous field")
	override(&km.Browse, cfg.Browse, "browse project")
	override(&km.Render, cfg.Render, "start render")
	override(&km.Settings, cfg.Settings, "set AE paths")
	override(&km.ClearLog, cfg.ClearLog, "clear log")
	override(&km.Help, cfg.Help, "help")
	override(&km.Quit, cfg.Quit, "quit")

	return km
}

// parseKeys parses a comma-separated list of keys.
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
