package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the glow preview.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	HalfPageUp    key.Binding
	HalfPageDown  key.Binding
	GotoTop       key.Binding
	GotoBottom    key.Binding
	NextEditor    key.Binding
	PrevEditor    key.Binding
	Toggle        key.Binding
	IntensityUp   key.Binding
	IntensityDown key.Binding
	Dynamic       key.Binding
	Definitions   key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		NextEditor: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next file"),
		),
		PrevEditor: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous file"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle glow"),
		),
		IntensityUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "brighter"),
		),
		IntensityDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "dimmer"),
		),
		Dynamic: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dynamic glow"),
		),
		Definitions: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "definitions only"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextEditor, k.Toggle, k.IntensityUp, k.IntensityDown, k.Dynamic, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.HalfPageUp, k.HalfPageDown, k.GotoTop, k.GotoBottom},
		{k.NextEditor, k.PrevEditor},
		{k.Toggle, k.IntensityUp, k.IntensityDown, k.Dynamic, k.Definitions},
		{k.Help, k.Quit},
	}
}
