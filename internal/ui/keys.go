package ui

import "github.com/charmbracelet/bubbles/key"

// Key bindings
var keys = struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Focus  key.Binding
	Toggle key.Binding
	TabPos key.Binding
	TabNeg key.Binding
	Prev   key.Binding
	Next   key.Binding
	Retry  key.Binding
	Debug  key.Binding
}{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select bank")),
	Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "explorer")),
	Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "open/close")),
	TabPos: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "positive")),
	TabNeg: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "negative")),
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	Debug:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
}

// hints renders key help for the status bar.
func hints(bs ...key.Binding) string {
	var s string
	for _, b := range bs {
		h := b.Help()
		s += StatusBarKey.Render(h.Key) + StatusBarText.Render(":"+h.Desc+"  ")
	}
	return s
}
