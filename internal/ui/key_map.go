package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	dismiss  key.Binding
	nextCat  key.Binding
	prevCat  key.Binding
	category key.Binding
	home     key.Binding
	rate     key.Binding
	poster   key.Binding
	profile  key.Binding
	logout   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide results")),
		nextCat:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		prevCat:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
		category: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "open category")),
		home:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recommended")),
		rate:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "rate")),
		poster:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open poster")),
		profile:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		logout:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.rate, k.profile, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.dismiss, k.nextCat, k.category, k.home},
		{k.rate, k.poster, k.profile, k.logout, k.quit},
	}
}
