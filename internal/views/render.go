// Package views turns plain view-model structs into styled terminal text.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	// Width is the terminal width; zero means unknown.
	Width        int
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Notification string
	Footer       string
}

type theme struct {
	header  lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	panel   lipgloss.Style
	notice  lipgloss.Style
	footer  lipgloss.Style
	running lipgloss.Style
	done    lipgloss.Style
	rank    lipgloss.Style
}

var styles = theme{
	header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	status:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	notice:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1),
	footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	running: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	done:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
	rank:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
}

const (
	defaultWidth  = 112
	minPaneWidth  = 30
	panelChrome   = 4 // border plus padding on both sides
	markdownWidth = 44
)

// paneWidths splits the terminal between the list and the side panel, the
// list getting the larger share.
func paneWidths(total int) (int, int) {
	if total <= 0 {
		total = defaultWidth
	}
	usable := total - 2*panelChrome
	left := usable * 55 / 100
	right := usable - left
	if left < minPaneWidth {
		left = minPaneWidth
	}
	if right < minPaneWidth {
		right = minPaneWidth
	}
	return left, right
}

func RenderApp(data AppData) string {
	left, right := paneWidths(data.Width)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.panel.Width(left).Render(data.LeftPane),
		styles.panel.Width(right).Render(data.RightPane),
	)

	parts := []string{styles.header.Render(data.Header), body}
	if data.StatusLine != "" {
		style := styles.status
		if data.StatusError {
			style = styles.err
		}
		parts = append(parts, style.Render(data.StatusLine))
	}
	if data.Notification != "" {
		parts = append(parts, styles.notice.Render(data.Notification))
	}
	if data.Footer != "" {
		parts = append(parts, styles.footer.Render(data.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderMarkdown renders md wrapped to fit the side panel. The raw text is
// returned when glamour cannot render it.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
