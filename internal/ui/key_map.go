package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up   key.Binding
	down key.Binding
	top  key.Binding
	play key.Binding
	open key.Binding
	more key.Binding
	help key.Binding
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		top:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "back to top")),
		play: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play/pause")),
		open: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		more: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.open, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.top},
		{k.play, k.open, k.more},
		{k.help, k.quit},
	}
}
