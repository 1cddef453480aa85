package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// Filters
	CycleSource   key.Binding
	CycleMarket   key.Binding
	CycleZone     key.Binding
	CycleYear     key.Binding
	ToggleClosing key.Binding
	ClearFilters  key.Binding

	// Application
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("Tab/→", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-Tab/←", "previous view"),
		),

		CycleSource: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "source"),
		),
		CycleMarket: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "market"),
		),
		CycleZone: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zone"),
		),
		CycleYear: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "year"),
		),
		ToggleClosing: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "closing type"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload files"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/Esc", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.CycleSource, k.CycleYear, k.ToggleClosing, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.CycleSource, k.CycleMarket, k.CycleZone, k.CycleYear},
		{k.ToggleClosing, k.ClearFilters, k.Reload},
		{k.Help, k.Quit},
	}
}
