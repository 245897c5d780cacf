package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/questd/internal/views"
)

// KeyMap holds every binding the UI reacts to outside the command palette.
type KeyMap struct {
	Today   key.Binding
	Quests  key.Binding
	Player  key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding

	Down     key.Binding
	Up       key.Binding
	Toggle   key.Binding
	Complete key.Binding
	Undo     key.Binding
	Archive  key.Binding
	MoveDown key.Binding
	MoveUp   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Today:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "today")),
		Quests:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "all quests")),
		Player:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "player")),
		Palette: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous")),
		Toggle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start or pause")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo today's completion")),
		Archive:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "archive or restore")),
		MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down in category")),
		MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up in category")),
	}
}

func (k KeyMap) global() []key.Binding {
	return []key.Binding{k.Today, k.Quests, k.Player, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) list() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Toggle, k.Complete, k.Undo, k.Archive, k.MoveDown, k.MoveUp}
}

// viewHelp adapts a KeyMap to help.KeyMap for one view. The player view has
// no list bindings.
type viewHelp struct {
	keys KeyMap
	view View
}

func (v viewHelp) ShortHelp() []key.Binding { return v.keys.global() }

func (v viewHelp) FullHelp() [][]key.Binding {
	if v.view == ViewPlayer {
		return [][]key.Binding{v.keys.global()}
	}
	return [][]key.Binding{v.keys.global(), v.keys.list()}
}

const paletteGrammar = `## Commands

- ` + "`add <name> [@category] [every:<days>] [est:<min>]`" + `
- ` + "`edit <ref> [name:<text>] [@category] [every:<days>] [est:<min>|none]`" + `
- ` + "`start | pause | resume | done | undo <ref>`" + `
- ` + "`archive | unarchive | delete <ref>`" + `
- ` + "`order <category> <ref> <ref>...`" + `

A ref is a row number in the current list or an id prefix.
Schedules: ` + "`daily`, `weekdays`, `weekends`, `mon,wed,fri`, `mon-fri`" + `.
`

func (m Model) renderHelp() string {
	if !m.HelpVisible {
		return ""
	}
	km := viewHelp{keys: m.Keys, view: m.CurrentView}
	var lines []string
	if m.CurrentView != ViewPlayer {
		for _, b := range m.Keys.list() {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("- %s: %s", h.Key, h.Desc))
		}
	}
	full := m.helpModel
	full.ShowAll = true
	return "\n\n" + views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    lines,
		HelpView:    full.View(km),
		Grammar:     views.RenderMarkdown(paletteGrammar),
	})
}
