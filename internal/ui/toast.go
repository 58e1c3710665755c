package ui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/actions"
)

const maxToasts = 4

type toast struct {
	id     int
	notice actions.Notice
}

// pushToast adds a notice and returns its id. Pending notices stay until
// replaced; the oldest toast is dropped once maxToasts is reached.
func (m *Model) pushToast(n actions.Notice) int {
	m.nextToast++
	m.toasts = append(m.toasts, toast{id: m.nextToast, notice: n})
	if len(m.toasts) > maxToasts {
		m.toasts = slices.Clone(m.toasts[len(m.toasts)-maxToasts:])
	}
	return m.nextToast
}

// pushErrorToast reports an error that never reached the network.
func (m *Model) pushErrorToast(err error) tea.Cmd {
	id := m.pushToast(actions.Notice{Level: actions.LevelError, Title: err.Error()})
	return expireToastCmd(id)
}

func (m *Model) replaceToast(id int, n actions.Notice) {
	for i := range m.toasts {
		if m.toasts[i].id == id {
			m.toasts[i].notice = n
			return
		}
	}
	m.toasts = append(m.toasts, toast{id: id, notice: n})
}

func (m *Model) dropToast(id int) {
	m.toasts = slices.DeleteFunc(slices.Clone(m.toasts), func(t toast) bool { return t.id == id })
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var icon string
		style := styles.Text
		switch t.notice.Level {
		case actions.LevelPending:
			icon = m.spinner.Spinner.Frames[0]
			style = styles.InfoText
		case actions.LevelSuccess:
			icon = "✓"
			style = styles.SuccessText
		case actions.LevelError:
			icon = "✗"
			style = styles.DangerText
		}
		lines = append(lines, style.Render(icon+" "+truncate(t.notice.String(), max(m.width-4, 10))))
	}
	return strings.Join(lines, "\n")
}
