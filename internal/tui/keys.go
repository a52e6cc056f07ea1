package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// Dashboard
	Generate key.Binding

	// History explorer filters
	FilterDirection key.Binding
	FilterResult    key.Binding

	// Stats view toggle
	ToggleView key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate signal")),

	FilterDirection: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cycle direction")),
	FilterResult:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "cycle result")),

	ToggleView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle view")),
}
