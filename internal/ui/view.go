package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/todoboard/internal/api"
)

// renderMain renders header, body, toasts and the command bar.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderCommandBar()
	toasts := m.renderToasts()

	used := lipgloss.Height(header) + lipgloss.Height(footer) + 1
	if toasts != "" {
		used += lipgloss.Height(toasts)
	}
	bodyHeight := max(m.height-used, 3)

	var body string
	switch m.screen {
	case screenDetail:
		body = m.renderDetail(bodyHeight)
	case screenActivity:
		body = m.renderActivity(bodyHeight)
	default:
		body = m.renderDashboard(bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Padding(0, 1).Render(body)

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	left := styles.Title.Render("todoboard")
	var context string
	switch m.screen {
	case screenDetail:
		if open := m.snap.OpenTodo; open != nil {
			context = open.Title
		}
	case screenActivity:
		context = "Activity"
	default:
		context = plural(len(m.snap.AllTodos), "list")
	}
	right := styles.FaintText.Render("T " + m.theme.Name)
	middle := styles.Text.Render(" › " + truncate(context, max(m.width-30, 10)))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(middle)-lipgloss.Width(right)-2, 1)
	return styles.Header.Width(m.width).Render(left + middle + strings.Repeat(" ", gap) + right)
}

func (m Model) activeHelp() help.KeyMap {
	switch m.screen {
	case screenDetail:
		return detailHelp{m.keys}
	case screenActivity:
		return activityHelp{m.keys}
	default:
		return dashboardHelp{m.keys}
	}
}

func (m Model) renderCommandBar() string {
	return m.help.View(m.activeHelp())
}

func (m Model) renderLoading() string {
	styles := m.theme.Styles()
	what := "Loading todo lists"
	if !m.want.todo.IsZero() {
		what = "Loading list"
	}
	return m.place(m.spinner.View() + " " + styles.MutedText.Render(what+"..."))
}

func (m Model) renderLoadError() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Could not load " + m.loadSubject()))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(describeError(m.loadErr)))
	b.WriteString("\n\n")
	hints := styles.AccentText.Render("r") + styles.MutedText.Render(" retry  ")
	if m.screen == screenDetail {
		hints += styles.AccentText.Render("esc") + styles.MutedText.Render(" back  ")
	}
	hints += styles.AccentText.Render("q") + styles.MutedText.Render(" quit")
	b.WriteString(hints)
	return m.place(styles.Modal.Width(min(70, max(m.width-4, 30))).Render(b.String()))
}

func (m Model) loadSubject() string {
	if m.want.todo.IsZero() {
		return "todo lists"
	}
	return fmt.Sprintf("list %s", m.want.todo)
}

// describeError turns a read error into a sentence for the error view.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case api.IsNotFound(err):
		return "The list does not exist anymore."
	case api.IsNetwork(err):
		return "The server could not be reached: " + err.Error()
	case api.IsServer(err):
		return "The server answered with an error: " + err.Error()
	default:
		return err.Error()
	}
}

// renderHelp renders the full key reference as an overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	content := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n\n" + h.View(m.activeHelp())
	return m.place(styles.Modal.Render(content))
}
