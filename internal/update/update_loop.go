package update

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.engine.Config().RefreshInterval)}
	if m.bridge != nil {
		cmds = append(cmds, waitForNoticeCmd(m.bridge.notices), waitForRefreshCmd(m.bridge.refresh))
	}
	if m.scheduler != nil {
		cmds = append(cmds, waitForEventCmd(m.scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			if key.Matches(typed, m.Keys.Help) {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		return m.handleKey(typed)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case TickMsg:
		m.pruneNotifications()
		return m, tickCmd(m.engine.Config().RefreshInterval)
	case NoticeMsg:
		m.notify("questd", typed.Message, "info", typed.Duration)
		if m.bridge != nil {
			return m, waitForNoticeCmd(m.bridge.notices)
		}
		return m, nil
	case RefreshMsg:
		m.afterChange()
		if m.bridge != nil {
			return m, waitForRefreshCmd(m.bridge.refresh)
		}
		return m, nil
	case SchedulerEventMsg:
		m = m.handleSchedulerEvent(typed.Event)
		if m.scheduler != nil {
			return m, waitForEventCmd(m.scheduler.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var left, right string
	switch m.CurrentView {
	case ViewPlayer:
		left = m.renderPlayerPanel()
		right = m.renderHistoryPanel()
	default:
		left = m.renderQuestList()
		right = m.renderQuestDetail() + "\n\n" + m.renderPlayerPanel()
	}
	right += m.renderHelp()

	player := m.engine.Player()
	return views.RenderApp(views.AppData{
		Width:        m.width,
		Header:       fmt.Sprintf("questd | view: %s | day: %s | level %d", m.CurrentView, m.engine.Today(), player.Level),
		LeftPane:     left + views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		RightPane:    right,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotifications(),
		Footer:       m.helpModel.ShortHelpView(m.Keys.global()),
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Palette):
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
	case key.Matches(msg, m.Keys.Today):
		m = m.switchView(ViewToday)
	case key.Matches(msg, m.Keys.Quests):
		m = m.switchView(ViewQuests)
	case key.Matches(msg, m.Keys.Player):
		m = m.switchView(ViewPlayer)
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	case key.Matches(msg, m.Keys.Quit):
		return m.quit()
	case m.CurrentView != ViewPlayer:
		m = m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) Model {
	if m.CurrentView != v {
		m.Cursor = 0
	}
	m.CurrentView = v
	return m
}

// quit banks the running timer and saves before leaving the program loop.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.engine.OnShutdown(m.ctx); err != nil {
		log.Printf("update: shutdown commit failed: %v", err)
		m.LastError = err
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) handleListKey(msg tea.KeyMsg) Model {
	rows := m.rows()
	switch {
	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(rows)-1 {
			m.Cursor++
		}
		return m
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m
	}

	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return m
	}
	sel := rows[m.Cursor]
	var err error
	switch {
	case key.Matches(msg, m.Keys.Toggle):
		if sel.Running {
			_, err = m.engine.PauseQuest(m.ctx, sel.Quest.ID)
			m.setResult(fmt.Sprintf("paused %s", sel.Quest.Name), err)
		} else {
			err = m.engine.StartQuest(m.ctx, sel.Quest.ID)
			m.setResult(fmt.Sprintf("started %s", sel.Quest.Name), err)
		}
	case key.Matches(msg, m.Keys.Complete):
		var res engine.CompletionResult
		res, err = m.engine.CompleteQuest(m.ctx, sel.Quest.ID)
		m.setResult(fmt.Sprintf("completed %s (+%d xp)", sel.Quest.Name, res.Completion.XPEarned), err)
	case key.Matches(msg, m.Keys.Undo):
		var undone bool
		undone, err = m.engine.UncompleteQuest(m.ctx, sel.Quest.ID)
		if err == nil && !undone {
			m.Status = StatusBar{Text: fmt.Sprintf("%s has no completion today", sel.Quest.Name), IsError: true}
		} else {
			m.setResult(fmt.Sprintf("undid %s", sel.Quest.Name), err)
		}
	case key.Matches(msg, m.Keys.Archive):
		if sel.Quest.Archived {
			err = m.engine.UnarchiveQuest(m.ctx, sel.Quest.ID)
			m.setResult(fmt.Sprintf("restored %s", sel.Quest.Name), err)
		} else {
			err = m.engine.ArchiveQuest(m.ctx, sel.Quest.ID)
			m.setResult(fmt.Sprintf("archived %s", sel.Quest.Name), err)
		}
	case key.Matches(msg, m.Keys.MoveDown):
		m = m.moveSelected(sel, 1)
	case key.Matches(msg, m.Keys.MoveUp):
		m = m.moveSelected(sel, -1)
	default:
		return m
	}
	m.afterChange()
	return m
}

// moveSelected swaps the selected quest with its neighbour in the same
// category and keeps the cursor on it.
func (m Model) moveSelected(sel engine.QuestStatus, delta int) Model {
	if sel.Quest.Archived {
		return m
	}
	var ids []string
	for _, q := range m.engine.ActiveQuests() {
		if q.Category == sel.Quest.Category {
			ids = append(ids, q.ID)
		}
	}
	i := indexOf(ids, sel.Quest.ID)
	j := i + delta
	if i < 0 || j < 0 || j >= len(ids) {
		return m
	}
	ids[i], ids[j] = ids[j], ids[i]
	if err := m.engine.ReorderQuests(m.ctx, sel.Quest.Category, ids); err != nil {
		m.setResult("", err)
		return m
	}
	for idx, row := range m.rows() {
		if row.Quest.ID == sel.Quest.ID {
			m.Cursor = idx
			break
		}
	}
	m.Status = StatusBar{Text: fmt.Sprintf("moved %s", sel.Quest.Name)}
	return m
}

func (m Model) handleSchedulerEvent(ev scheduler.Event) Model {
	switch ev.Kind {
	case scheduler.EventRollover:
		changed, err := m.engine.OnTick(m.ctx)
		if err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		if changed {
			m.Cursor = 0
			m.Status = StatusBar{Text: fmt.Sprintf("new day: %s", m.engine.Today())}
		}
		m.scheduleRollover()
		m.afterChange()
	case scheduler.EventEstimateReached:
		q, _, ok := m.engine.Running()
		if !ok || q.ID != ev.QuestID || !q.HasEstimate() {
			return m
		}
		body := fmt.Sprintf("%s reached its %dm estimate", q.Name, *q.EstimateMinutes)
		m.notify("Estimate reached", body, "info", 0)
		m.Status = StatusBar{Text: body}
	}
	return m
}

func (m *Model) setResult(text string, err error) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.Status = StatusBar{Text: text}
}

// afterChange re-clamps the cursor and re-aims the estimate alert after any
// engine mutation.
func (m *Model) afterChange() {
	rows := m.rows()
	if m.Cursor >= len(rows) {
		m.Cursor = len(rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncEstimateAlert()
}

func (m *Model) scheduleRollover() {
	if m.scheduler == nil {
		return
	}
	err := m.scheduler.Schedule(scheduler.Event{
		ID:        rolloverEventID,
		Kind:      scheduler.EventRollover,
		TriggerAt: m.engine.NextRolloverCheck(),
	})
	if err != nil {
		log.Printf("update: schedule rollover check: %v", err)
	}
}

// syncEstimateAlert keeps exactly one estimate alert pending, for the running
// quest, when it has an estimate it has not yet reached.
func (m *Model) syncEstimateAlert() {
	if m.scheduler == nil {
		return
	}
	q, _, running := m.engine.Running()
	target := ""
	if running && q.HasEstimate() {
		target = q.ID
	}
	if target == m.estimateFor {
		return
	}
	if m.estimateFor != "" {
		m.scheduler.Cancel(estimateEventID(m.estimateFor))
	}
	m.estimateFor = target
	if target == "" {
		return
	}
	remaining := float64(*q.EstimateMinutes) - m.engine.TotalMinutes(target)
	if remaining <= 0 {
		return
	}
	err := m.scheduler.Schedule(scheduler.Event{
		ID:        estimateEventID(target),
		Kind:      scheduler.EventEstimateReached,
		QuestID:   target,
		TriggerAt: m.now().Add(minutesToDuration(remaining)),
	})
	if err != nil {
		log.Printf("update: schedule estimate alert: %v", err)
	}
}

// rows lists what the current view shows, in display order. The Quests view
// appends archived quests after the active ones.
func (m Model) rows() []engine.QuestStatus {
	switch m.CurrentView {
	case ViewToday:
		return m.engine.DueToday()
	case ViewQuests:
		return m.allRows()
	default:
		return nil
	}
}

func (m Model) allRows() []engine.QuestStatus {
	rows := m.engine.Statuses()
	for _, q := range m.engine.ArchivedQuests() {
		rows = append(rows, engine.QuestStatus{Quest: q})
	}
	return rows
}

func (m *Model) notify(title, body, level string, d time.Duration) {
	if strings.TrimSpace(body) == "" {
		return
	}
	if d <= 0 {
		d = defaultNoticeLength
	}
	now := m.now()
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    now,
		Until: now.Add(d),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send(n); err != nil {
			log.Printf("update: desktop notification: %v", err)
		}
	}
}

func (m *Model) pruneNotifications() {
	now := m.now()
	kept := make([]Notification, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		if n.Until.After(now) {
			kept = append(kept, n)
		}
	}
	m.Notifications = kept
}
