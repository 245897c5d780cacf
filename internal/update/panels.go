package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/views"
)

func (m Model) renderQuestList() string {
	rows := m.rows()
	data := views.QuestListData{
		Title:   string(m.CurrentView),
		Day:     m.engine.Today(),
		Actions: "s start/pause | c complete | u undo | x archive | J/K move",
		Rows:    make([]views.QuestRowData, 0, len(rows)),
		Cursor:  m.Cursor,
	}
	for _, st := range rows {
		data.Rows = append(data.Rows, questRow(st))
	}
	return views.RenderQuestList(data)
}

func questRow(st engine.QuestStatus) views.QuestRowData {
	q := st.Quest
	row := views.QuestRowData{
		ID:       q.ID,
		Name:     q.Name,
		Category: q.Category,
		Group:    q.Category,
		Schedule: model.ParseSchedule(q.Schedule).String(),
		Minutes:  engine.FormatMinutes(st.Minutes),
		XP:       st.XPEarned,
		Due:      st.Due,
		Done:     st.Done,
		Running:  st.Running,
		Archived: q.Archived,
	}
	if q.HasEstimate() {
		row.Estimate = *q.EstimateMinutes
	}
	if q.Archived {
		row.Group = "archived"
	}
	return row
}

func (m Model) renderQuestDetail() string {
	rows := m.rows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return views.RenderQuestDetail(views.QuestDetailData{})
	}
	row := questRow(rows[m.Cursor])
	h := m.engine.History(row.ID)
	return views.RenderQuestDetail(views.QuestDetailData{
		Row:         &row,
		Completions: h.Count,
		TotalXP:     h.XPEarned,
		TotalTime:   engine.FormatMinutes(float64(h.MinutesSpent)),
		LastDone:    h.LastDate,
	})
}

func (m Model) renderPlayerPanel() string {
	p := m.engine.Player()
	next := m.engine.Ledger().XPForNextLevel(p.Level)
	ratio := 0.0
	if next > 0 {
		ratio = float64(p.XP) / float64(next)
	}
	data := views.PlayerPanelData{
		Level:     p.Level,
		XP:        p.XP,
		NextLevel: next,
		Rank:      model.RankForLevel(p.Level),
		XPBar:     m.xpProgress.ViewAs(ratio),
		Day:       m.engine.Today(),
	}
	if q, _, ok := m.engine.Running(); ok {
		data.Running = q.Name
		data.Elapsed = engine.FormatMinutes(m.engine.TotalMinutes(q.ID))
	}
	for _, rec := range m.engine.CompletionsToday() {
		name := rec.QuestID
		if q, ok := m.engine.Quest(rec.QuestID); ok {
			name = q.Name
		}
		data.DoneToday = append(data.DoneToday, name)
		data.XPToday += rec.XPEarned
	}
	return views.RenderPlayerPanel(data)
}

func (m Model) renderHistoryPanel() string {
	quests := m.engine.ActiveQuests()
	rows := make([]views.HistoryRowData, 0, len(quests))
	for _, q := range quests {
		h := m.engine.History(q.ID)
		rows = append(rows, views.HistoryRowData{
			Name:     q.Name,
			Count:    h.Count,
			Time:     engine.FormatMinutes(float64(h.MinutesSpent)),
			XP:       h.XPEarned,
			LastDate: h.LastDate,
		})
	}
	return views.RenderHistory(rows)
}

func (m Model) renderNotifications() string {
	now := m.now()
	lines := make([]string, 0, 3)
	for i := len(m.Notifications) - 1; i >= 0 && len(lines) < 3; i-- {
		n := m.Notifications[i]
		if !n.Until.After(now) {
			continue
		}
		lines = append(lines, views.RenderNotification(n.Level, n.Body))
	}
	return strings.Join(lines, "\n")
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func estimateEventID(questID string) string {
	return fmt.Sprintf("estimate:%s", questID)
}

func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
