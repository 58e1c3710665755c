package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/todo"
)

// visibleTodos applies the search term and the preferred order.
func (m Model) visibleTodos() []todo.Todo {
	todos := m.snap.AllTodos
	if m.snap.Searching() {
		todos = todo.SearchTodos(todos, m.snap.SearchTerm).Todos
	} else {
		todos = slices.Clone(todos)
	}
	if m.prefs.NewestFirst {
		slices.Reverse(todos)
	}
	return todos
}

func (m Model) selectedTodo() (todo.Todo, bool) {
	todos := m.visibleTodos()
	if m.cursor < 0 || m.cursor >= len(todos) {
		return todo.Todo{}, false
	}
	return todos[m.cursor], true
}

// selectTodo moves the cursor to id when it is visible.
func (m *Model) selectTodo(id todo.ID) {
	for i, t := range m.visibleTodos() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.visibleTodos())

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(n-1, 0)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.snap.SearchTerm)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		if m.snap.Searching() {
			m.search.SetValue("")
			m.store.SetSearchTerm("")
			m.cursor = 0
			m.refresh()
		}

	case key.Matches(msg, m.keys.Open):
		if t, ok := m.selectedTodo(); ok {
			return m.openTodo(t.ID)
		}

	case key.Matches(msg, m.keys.NewList):
		m.form = newListForm("New list", "", "")
		return m, m.form.focusCmd()

	case key.Matches(msg, m.keys.Rename):
		if t, ok := m.selectedTodo(); ok {
			m.form = newListForm("Rename list", t.ID, t.Title)
			return m, m.form.focusCmd()
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTodo(); ok {
			id := t.ID
			orch := m.orch
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete %q and all of its items?", t.Title),
				action: func() (*actions.Write, error) { return orch.DeleteTodo(id) },
			}
		}

	case key.Matches(msg, m.keys.ImportDemo):
		orch := m.orch
		m.confirm = &confirmation{
			prompt: "Replace all lists with demo data?",
			action: orch.ImportDemo,
		}

	case key.Matches(msg, m.keys.Order):
		m.prefs.NewestFirst = !m.prefs.NewestFirst
		m.cursor = 0
		m.savePrefs()
	}
	return m, nil
}

func (m Model) renderDashboard(height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.searching || m.snap.Searching() {
		if m.searching {
			b.WriteString(m.search.View())
		} else {
			b.WriteString(styles.AccentText.Render("/ " + m.snap.SearchTerm))
		}
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(m.searchSummary()))
		b.WriteString("\n\n")
		height -= 2
	}

	todos := m.visibleTodos()
	if len(todos) == 0 {
		if m.snap.Searching() {
			b.WriteString(styles.MutedText.Render("Nothing matches your search."))
		} else {
			b.WriteString(styles.MutedText.Render("No todo lists yet. Press n to create one or D to import demo data."))
		}
		return b.String()
	}

	cardWidth := max(min(m.width-2, 72), 20)
	const cardHeight = 4 // border + two content lines
	visible := max(height/cardHeight, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(todos))

	now := m.clock()
	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, m.renderCard(todos[i], i == m.cursor, cardWidth, now))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	return b.String()
}

func (m Model) searchSummary() string {
	res := todo.SearchTodos(m.snap.AllTodos, m.snap.SearchTerm)
	return fmt.Sprintf("%s, %s", plural(res.TodoMatches, "list"), plural(res.ItemMatches, "item"))
}

func (m Model) renderCard(t todo.Todo, selected bool, width int, now time.Time) string {
	styles := m.theme.Styles()
	p := todo.ProgressOf(t, now)

	title := styles.Title.Render(truncate(t.Title, width-6))
	counts := fmt.Sprintf("%d/%d done", p.Finished, p.Items)
	if p.Missed > 0 {
		counts += "  " + styles.DangerText.Render(fmt.Sprintf("%d missed", p.Missed))
	}
	barWidth := max(width-lipgloss.Width(counts)-8, 5)
	bar := styles.SuccessText.Render(progressBar(p.Percent(), barWidth))
	body := title + "\n" + bar + "  " + styles.MutedText.Render(counts)

	style := styles.Card
	if selected {
		style = styles.CardFocus
	}
	return style.Width(width - 2).Render(body)
}
