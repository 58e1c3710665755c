package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/logtail"
)

// activityHelp implements help.KeyMap for the activity log.
type activityHelp struct{ k keyMap }

func (h activityHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Retry, h.k.Activity, h.k.Back, h.k.Quit}
}

func (h activityHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.screen = m.prevScreen
	case key.Matches(msg, m.keys.Retry):
		return m, loadActivityCmd(m.logFile)
	}
	return m, nil
}

// renderActivity shows the newest log entries that fit, oldest first.
func (m Model) renderActivity(height int) string {
	styles := m.theme.Styles()
	if m.activityErr != nil {
		return styles.DangerText.Render("Could not read " + m.logFile + ": " + m.activityErr.Error())
	}
	if len(m.activity) == 0 {
		return styles.MutedText.Render("No activity yet.")
	}
	entries := m.activity
	if len(entries) > height {
		entries = entries[len(entries)-height:]
	}
	width := max(m.width-2, 20)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.renderEntry(e, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e logtail.Entry, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
		b.WriteString(" ")
	}
	if e.Level != "" {
		b.WriteString(styles.LevelStyle(e.Level).Render(strings.ToUpper(truncate(e.Level, 4))))
		b.WriteString(" ")
	}
	b.WriteString(styles.Text.Render(e.Msg))
	if len(e.Fields) > 0 {
		rest := logtail.Format(logtail.Entry{Fields: e.Fields})
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(truncate(strings.TrimSpace(rest), width)))
	}
	return b.String()
}
