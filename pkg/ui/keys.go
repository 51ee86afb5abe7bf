package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Toggle       key.Binding
	SelectAll    key.Binding
	None         key.Binding
	MinUp        key.Binding
	MinDown      key.Binding
	MinUpFast    key.Binding
	MinDownFast  key.Binding
	StartEarlier key.Binding
	StartLater   key.Binding
	EndEarlier   key.Binding
	EndLater     key.Binding
	Scale        key.Binding
	Copy         key.Binding
	ExportHTML   key.Binding
	Snapshot     key.Binding
	Reload       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Toggle:       key.NewBinding(key.WithKeys(" ", "enter", "x"), key.WithHelp("space", "toggle state")),
		SelectAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		None:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "unselect all")),
		MinUp:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "min cases")),
		MinDown:      key.NewBinding(key.WithKeys("-", "_")),
		MinUpFast:    key.NewBinding(key.WithKeys("ctrl+up", "pgup"), key.WithHelp("pgup/pgdn", "min cases ×50")),
		MinDownFast:  key.NewBinding(key.WithKeys("ctrl+down", "pgdown")),
		StartEarlier: key.NewBinding(key.WithKeys("["), key.WithHelp("[ ]", "move start")),
		StartLater:   key.NewBinding(key.WithKeys("]")),
		EndEarlier:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{ }", "move end")),
		EndLater:     key.NewBinding(key.WithKeys("}")),
		Scale:        key.NewBinding(key.WithKeys("tab", "L"), key.WithHelp("tab", "linear/log")),
		Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy rows")),
		ExportHTML:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export html")),
		Snapshot:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save chart")),
		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.SelectAll, k.None, k.MinUp, k.StartEarlier, k.EndEarlier, k.Scale, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Toggle},
		{k.SelectAll, k.None, k.MinUp, k.MinUpFast, k.StartEarlier, k.EndEarlier},
		{k.Scale, k.Copy, k.ExportHTML, k.Snapshot, k.Reload, k.Help, k.Quit},
	}
}
