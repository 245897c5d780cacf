package update

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/engine"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.afterChange()
	return m
}

func (m Model) paletteHandlers() commands.Handlers {
	ctx := m.ctx
	eng := m.engine
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			q, err := eng.CreateQuest(ctx, engine.QuestInput{
				Name:            a.Name,
				Category:        a.Category,
				Schedule:        a.Schedule,
				EstimateMinutes: a.Estimate,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("created quest: %s", q.Name)}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			id, err := m.resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			q, err := eng.UpdateQuest(ctx, id, engine.QuestPatch{
				Name:            a.Name,
				Category:        a.Category,
				Schedule:        a.Schedule,
				EstimateMinutes: a.Estimate,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("updated quest: %s", q.Name)}, nil
		},
		Start:  m.questHandler("started", eng.StartQuest),
		Resume: m.questHandler("resumed", eng.ResumeQuest),
		Pause: m.questHandler("paused", func(c context.Context, id string) error {
			paused, err := eng.PauseQuest(c, id)
			if err == nil && !paused {
				return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "quest is not running"}
			}
			return err
		}),
		Done: m.questHandler("completed", func(c context.Context, id string) error {
			_, err := eng.CompleteQuest(c, id)
			return err
		}),
		Undo: m.questHandler("undid", func(c context.Context, id string) error {
			undone, err := eng.UncompleteQuest(c, id)
			if err == nil && !undone {
				return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no completion today to undo"}
			}
			return err
		}),
		Archive:   m.questHandler("archived", eng.ArchiveQuest),
		Unarchive: m.questHandler("restored", eng.UnarchiveQuest),
		Delete:    m.questHandler("deleted", eng.DeleteQuest),
		Order: func(a commands.OrderArgs) (commands.Result, error) {
			ids := make([]string, 0, len(a.Refs))
			for _, ref := range a.Refs {
				id, err := m.resolve(ref)
				if err != nil {
					return commands.Result{}, err
				}
				ids = append(ids, id)
			}
			if err := eng.ReorderQuests(ctx, a.Category, ids); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reordered %s", a.Category)}, nil
		},
	}
}

func (m Model) questHandler(verb string, op func(context.Context, string) error) func(commands.QuestArgs) (commands.Result, error) {
	return func(a commands.QuestArgs) (commands.Result, error) {
		id, err := m.resolve(a.Ref)
		if err != nil {
			return commands.Result{}, err
		}
		name := id
		if q, ok := m.engine.Quest(id); ok {
			name = q.Name
		}
		if err := op(m.ctx, id); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("%s %s", verb, name)}, nil
	}
}

// resolve maps a palette reference against the rows on screen. Id prefixes
// that match nothing on screen are retried against every quest, as are row
// numbers in views without a list.
func (m Model) resolve(ref string) (string, error) {
	_, numErr := strconv.Atoi(strings.TrimSpace(ref))
	numeric := numErr == nil
	if visible := rowIDs(m.rows()); len(visible) > 0 || m.CurrentView != ViewPlayer {
		id, err := commands.Resolve(ref, visible)
		if err == nil {
			return id, nil
		}
		var ce *commands.CommandError
		if numeric || !errors.As(err, &ce) || ce.Code != commands.ErrCodeUnknownQuest {
			return "", err
		}
	}
	return commands.Resolve(ref, rowIDs(m.allRows()))
}

func rowIDs(rows []engine.QuestStatus) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Quest.ID)
	}
	return ids
}
