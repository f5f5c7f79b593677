package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the dashboard.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit       key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Tab1       key.Binding
	Tab2       key.Binding
	Tab3       key.Binding
	Refresh    key.Binding
	Snapshot   key.Binding
	Scheduler  key.Binding
	PrevSeries key.Binding
	NextSeries key.Binding
	Narrower   key.Binding
	Wider      key.Binding
	Help       key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextTab, k.Refresh, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3},
		{k.PrevSeries, k.NextSeries, k.Narrower, k.Wider},
		{k.Refresh, k.Snapshot, k.Scheduler, k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the dashboard.
var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab:    key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
	Tab1:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
	Tab2:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
	Tab3:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "processes")),
	Refresh:    key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
	Snapshot:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save snapshot")),
	Scheduler:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle scheduler")),
	PrevSeries: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "prev series")),
	NextSeries: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next series")),
	Narrower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower window")),
	Wider:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "wider window")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
