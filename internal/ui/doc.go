// Package ui provides rendering functions for the aerun terminal UI.
//
// It contains the Render function which takes RenderParams and produces
// the terminal output, as well as Lipgloss style definitions. Component
// views (text inputs, the log viewport, the file picker, the settings form)
// arrive already rendered as strings, so rendering stays pure.
package ui
