package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/todo"
)

func (m Model) visibleItems() []todo.Item {
	return todo.FilterItems(m.snap.AllItems, m.snap.Filter, m.clock())
}

func (m Model) selectedItem() (todo.Item, bool) {
	items := m.visibleItems()
	if m.itemCursor < 0 || m.itemCursor >= len(items) {
		return todo.Item{}, false
	}
	return items[m.itemCursor], true
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.visibleItems())

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m.backToDashboard()

	case key.Matches(msg, m.keys.Up):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.itemCursor < n-1 {
			m.itemCursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.itemCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.itemCursor = max(n-1, 0)

	case key.Matches(msg, m.keys.CycleFilter):
		m.setFilter(m.snap.Filter.Next())
	case key.Matches(msg, m.keys.FilterAll):
		m.setFilter(todo.FilterAll)
	case key.Matches(msg, m.keys.FilterAct):
		m.setFilter(todo.FilterActive)
	case key.Matches(msg, m.keys.FilterFin):
		m.setFilter(todo.FilterFinished)
	case key.Matches(msg, m.keys.FilterMiss):
		m.setFilter(todo.FilterMissed)

	case key.Matches(msg, m.keys.AddItem):
		draft, err := m.orch.BeginNewItem()
		if err != nil {
			cmd := m.pushErrorToast(err)
			return m, cmd
		}
		m.refresh()
		m.form = newItemForm("New item", draft, true)
		return m, m.form.focusCmd()

	case key.Matches(msg, m.keys.EditItem):
		if item, ok := m.selectedItem(); ok {
			m.form = newItemForm("Edit item", item, false)
			return m, m.form.focusCmd()
		}

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.selectedItem(); ok {
			w, err := m.orch.ToggleFinished(item.ID)
			if err != nil {
				cmd := m.pushErrorToast(err)
				return m, cmd
			}
			cmd := m.runWrite(w)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selectedItem(); ok {
			w, err := m.orch.DeleteItem(item.ID)
			if err != nil {
				cmd := m.pushErrorToast(err)
				return m, cmd
			}
			cmd := m.runWrite(w)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Rename):
		if open := m.snap.OpenTodo; open != nil {
			m.form = newListForm("Rename list", open.ID, open.Title)
			return m, m.form.focusCmd()
		}
	}
	return m, nil
}

func (m *Model) setFilter(f todo.Filter) {
	m.store.SetFilter(f)
	m.itemCursor = 0
	m.refresh()
}

func (m Model) renderFilterTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(todo.Filters))
	for _, f := range todo.Filters {
		label := fmt.Sprintf("%s %d", filterLabel(f), m.snap.FilterCounts.Get(f))
		if f == m.snap.Filter {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func filterLabel(f todo.Filter) string {
	switch f {
	case todo.FilterActive:
		return "Active"
	case todo.FilterFinished:
		return "Finished"
	case todo.FilterMissed:
		return "Missed"
	default:
		return "All"
	}
}

func (m Model) renderDetail(height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(m.renderFilterTabs())
	b.WriteString("\n\n")
	height -= 2

	items := m.visibleItems()
	if len(items) == 0 {
		if m.snap.Filter == todo.FilterAll {
			b.WriteString(styles.MutedText.Render("This list is empty. Press a to add an item."))
		} else {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("No %s items.", strings.ToLower(filterLabel(m.snap.Filter)))))
		}
		return b.String()
	}

	// One line per item plus one for the selected item's description.
	visible := max(height-1, 1)
	start := 0
	if m.itemCursor >= visible {
		start = m.itemCursor - visible + 1
	}
	end := min(start+visible, len(items))

	now := m.clock()
	lineWidth := max(m.width-2, 20)
	for i := start; i < end; i++ {
		item := items[i]
		selected := i == m.itemCursor

		box := "[ ]"
		if item.Finished {
			box = "[x]"
		}
		status := styles.MutedText
		switch todo.StateOf(item, now) {
		case todo.FilterFinished:
			status = styles.SuccessText
		case todo.FilterMissed:
			status = styles.DangerText
		}

		due := formatDeadline(item)
		if d, ok := item.Deadline(); ok {
			due += " (" + relative(d, now) + ")"
		}
		title := truncate(item.Title, max(lineWidth-len(due)-8, 10))
		line := fmt.Sprintf("%s %s  %s", box, title, due)
		if selected {
			b.WriteString(styles.Selected.Render(truncate(line, lineWidth)))
		} else {
			b.WriteString(status.Render(box) + " " + styles.Text.Render(title) + "  " + status.Render(due))
		}
		b.WriteString("\n")
		if selected && item.Description != "" {
			b.WriteString("    " + styles.FaintText.Render(truncate(item.Description, lineWidth-4)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
