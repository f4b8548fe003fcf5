package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the board bindings. It implements help.KeyMap.
type keyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Add    key.Binding
	Edit   key.Binding
	Grab   key.Binding
	Drop   key.Binding
	Cancel key.Binding
	Trash  key.Binding
	Copy   key.Binding
	Detail key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "lane left")),
		Right:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "lane right")),
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Grab:   key.NewBinding(key.WithKeys(" ", "space", "m"), key.WithHelp("space", "pick up")),
		Drop:   key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "drop")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Trash:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		Detail: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "details")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Grab, k.Trash, k.Detail, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Add, k.Edit, k.Trash, k.Copy},
		{k.Grab, k.Drop, k.Cancel},
		{k.Detail, k.Help, k.Quit},
	}
}

// carryHelp is shown in the footer while a card is being carried.
func (k keyMap) carryHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Drop, k.Cancel}
}
