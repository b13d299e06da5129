package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the telemetry view.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Worker control.
	Attach key.Binding
	Detach key.Binding
	Reset  key.Binding

	// Robot commands.
	CalibrateAmbient   key.Binding
	CalibrateReference key.Binding

	// Metric table.
	Hide      key.Binding
	UnhideAll key.Binding
	Clear     key.Binding
	Focus     key.Binding

	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Attach: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "attach"),
	),
	Detach: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "detach"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	CalibrateAmbient: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "cal. ambient IR"),
	),
	CalibrateReference: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "cal. reference IR"),
	),
	Hide: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hide"),
	),
	UnhideAll: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "unhide all"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Focus: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "focus"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Attach, k.Detach, k.Reset, k.CalibrateAmbient, k.CalibrateReference, k.Hide, k.Clear, k.Focus, k.Quit}
}

// FullHelp satisfies help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Attach, k.Detach, k.Reset},
		{k.CalibrateAmbient, k.CalibrateReference},
		{k.Hide, k.UnhideAll, k.Clear, k.Focus},
		{k.Quit},
	}
}
