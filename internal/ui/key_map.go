package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the chooser.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	skip   key.Binding
	filter key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		skip:   key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s/esc", "none of these")),
		filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort build")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.skip, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.skip, k.filter, k.quit},
	}
}
