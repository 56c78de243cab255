package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list view bindings. Form views route keys to the form
// dialog instead, except for the globals.
type keyMap struct {
	Next       key.Binding
	Previous   key.Binding
	Reload     key.Binding
	Compose    key.Binding
	Up         key.Binding
	Down       key.Binding
	Detail     key.Binding
	Dismiss    key.Binding
	Logout     key.Binding
	Quit       key.Binding
	SwitchForm key.Binding
	ForceQuit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		Previous:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Compose:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "write review")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Detail:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		SwitchForm: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "sign in/register")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// listHelp is the short help shown under the review list.
func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Detail, k.Next, k.Previous, k.Reload, k.Compose, k.Logout, k.Quit}
}
