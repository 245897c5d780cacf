package views

import (
	"fmt"
	"strings"
)

type QuestRowData struct {
	ID       string
	Name     string
	Category string
	// Group is the list section the row is shown under.
	Group    string
	Schedule string
	Estimate int
	Minutes  string
	XP       int
	Due      bool
	Done     bool
	Running  bool
	Archived bool
}

type QuestListData struct {
	Title   string
	Day     string
	Actions string
	Rows    []QuestRowData
	Cursor  int
}

type QuestDetailData struct {
	Row         *QuestRowData
	Completions int
	TotalXP     int
	TotalTime   string
	LastDone    string
}

type PlayerPanelData struct {
	Level     int
	XP        int
	NextLevel int
	Rank      string
	XPBar     string
	Day       string
	Running   string
	Elapsed   string
	DoneToday []string
	XPToday   int
}

type HistoryRowData struct {
	Name     string
	Count    int
	Time     string
	XP       int
	LastDate string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
	Grammar     string
}

func RenderQuestList(data QuestListData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %s\n", strings.ToLower(data.Title), data.Day))
	if data.Actions != "" {
		b.WriteString("actions: " + data.Actions + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("\n(no quests)")
		return b.String()
	}

	group := ""
	for i, row := range data.Rows {
		if row.Group != group {
			group = row.Group
			b.WriteString(fmt.Sprintf("\n%s:\n", group))
		}
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %2d %s\n", cursor, i+1, renderQuestRow(row)))
	}
	return strings.TrimSpace(b.String())
}

func renderQuestRow(row QuestRowData) string {
	badge := questBadge(row)
	name := row.Name
	switch {
	case row.Running:
		name = styles.running.Render(name)
	case row.Done:
		name = styles.done.Render(name)
	}
	line := fmt.Sprintf("%s %s", badge, name)
	if row.Minutes != "" && row.Minutes != "0m" {
		line += " " + row.Minutes
	}
	if row.Estimate > 0 {
		line += fmt.Sprintf(" /%dm", row.Estimate)
	}
	if row.Done {
		line += fmt.Sprintf(" +%dxp", row.XP)
	}
	return line
}

func questBadge(row QuestRowData) string {
	switch {
	case row.Archived:
		return "[ARCH]"
	case row.Done:
		return "[DONE]"
	case row.Running:
		return "[RUN ]"
	case !row.Due:
		return "[ -- ]"
	default:
		return "[TODO]"
	}
}

func RenderQuestDetail(data QuestDetailData) string {
	if data.Row == nil {
		return "quest:\n(no selection)"
	}
	row := data.Row
	var b strings.Builder
	b.WriteString("quest:\n")
	b.WriteString(fmt.Sprintf("name: %s\n", row.Name))
	b.WriteString(fmt.Sprintf("id: %s\n", row.ID))
	b.WriteString(fmt.Sprintf("category: %s\n", row.Category))
	b.WriteString(fmt.Sprintf("schedule: %s\n", row.Schedule))
	if row.Estimate > 0 {
		b.WriteString(fmt.Sprintf("estimate: %dm\n", row.Estimate))
	} else {
		b.WriteString("estimate: none (flat xp)\n")
	}
	b.WriteString(fmt.Sprintf("today: %s\n", questBadge(*row)))
	b.WriteString(fmt.Sprintf("\nhistory: %d completion(s), %s, %d xp\n", data.Completions, data.TotalTime, data.TotalXP))
	if data.LastDone != "" {
		b.WriteString(fmt.Sprintf("last done: %s", data.LastDone))
	}
	return strings.TrimSpace(b.String())
}

func RenderPlayerPanel(data PlayerPanelData) string {
	var b strings.Builder
	b.WriteString("player:\n")
	b.WriteString(fmt.Sprintf("level %d  %s\n", data.Level, styles.rank.Render(data.Rank)))
	b.WriteString(fmt.Sprintf("xp: %d / %d\n", data.XP, data.NextLevel))
	if data.XPBar != "" {
		b.WriteString(data.XPBar + "\n")
	}
	b.WriteString(fmt.Sprintf("\nday: %s\n", data.Day))
	if data.Running != "" {
		b.WriteString(fmt.Sprintf("running: %s (%s)\n", data.Running, data.Elapsed))
	} else {
		b.WriteString("running: (idle)\n")
	}
	b.WriteString(fmt.Sprintf("\ncompleted today: %d (+%d xp)\n", len(data.DoneToday), data.XPToday))
	for _, name := range data.DoneToday {
		b.WriteString("- " + name + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderHistory(rows []HistoryRowData) string {
	if len(rows) == 0 {
		return "history:\n(no quests)"
	}
	var b strings.Builder
	b.WriteString("history:\n")
	for _, row := range rows {
		last := row.LastDate
		if last == "" {
			last = "never"
		}
		b.WriteString(fmt.Sprintf("%-20s x%-3d %7s %5dxp  last %s\n", truncate(row.Name, 20), row.Count, row.Time, row.XP, last))
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: %s", inputView)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
	if data.Grammar != "" {
		out += "\n\n" + data.Grammar
	}
	return out
}
