package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	tab      key.Binding
	enter    key.Binding
	favorite key.Binding
	genre    key.Binding
	director key.Binding
	reload   key.Binding
	back     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "synopsis")),
		favorite: key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space/f", "favorite")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		director: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "director")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.favorite, k.enter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab},
		{k.enter, k.favorite, k.genre, k.director},
		{k.reload, k.back, k.quit},
	}
}
