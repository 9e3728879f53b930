package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up       key.Binding
	down     key.Binding
	refresh  key.Binding
	clearOne key.Binding
	clearAll key.Binding
	copyRow  key.Binding
	yes      key.Binding
	no       key.Binding
	esc      key.Binding
	quit     key.Binding
}

var keys = keyMap{
	up:       key.NewBinding(key.WithKeys("up", "k")),
	down:     key.NewBinding(key.WithKeys("down", "j")),
	refresh:  key.NewBinding(key.WithKeys("r")),
	clearOne: key.NewBinding(key.WithKeys("d")),
	clearAll: key.NewBinding(key.WithKeys("x")),
	copyRow:  key.NewBinding(key.WithKeys("c")),
	yes:      key.NewBinding(key.WithKeys("y")),
	no:       key.NewBinding(key.WithKeys("n")),
	esc:      key.NewBinding(key.WithKeys("esc")),
	quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
