package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/prefs"
	"github.com/five82/todoboard/internal/todo"
)

// handleKey routes keyboard input to the topmost layer: blocking states
// first, then overlays, then the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.loading {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.loadErr != nil {
		return m.handleLoadErrorKey(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Activity):
		if m.screen == screenActivity {
			m.screen = m.prevScreen
			return m, nil
		}
		m.prevScreen = m.screen
		m.screen = screenActivity
		return m, loadActivityCmd(m.logFile)
	}

	switch m.screen {
	case screenDetail:
		return m.handleDetailKey(msg)
	case screenActivity:
		return m.handleActivityKey(msg)
	default:
		return m.handleDashboardKey(msg)
	}
}

func (m Model) handleLoadErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Retry):
		return m.startLoad(m.want)
	case key.Matches(msg, m.keys.Back):
		if m.screen == screenDetail {
			return m.backToDashboard()
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		c := m.confirm
		m.confirm = nil
		w, err := c.action()
		if err != nil {
			cmd := m.pushErrorToast(err)
			return m, cmd
		}
		cmd := m.runWrite(w)
		return m, cmd
	case "n", "N", "esc", "q":
		m.confirm = nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.store.SetSearchTerm("")
		m.cursor = 0
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.store.SetSearchTerm(m.search.Value())
	m.cursor = 0
	m.refresh()
	return m, cmd
}

// startLoad shows the spinner and fetches target.
func (m Model) startLoad(target loadTarget) (Model, tea.Cmd) {
	m.loading = true
	m.loadErr = nil
	m.want = target
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(target))
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.target != m.want {
		return m, nil
	}
	m.loading = false
	m.loadErr = msg.err
	m.refresh()
	return m, nil
}

func (m Model) backToDashboard() (Model, tea.Cmd) {
	m.orch.CloseTodo()
	m.screen = screenDashboard
	m.itemCursor = 0
	m.refresh()
	return m.startLoad(loadTarget{})
}

func (m Model) openTodo(id todo.ID) (Model, tea.Cmd) {
	m.screen = screenDetail
	m.itemCursor = 0
	m.searching = false
	m.search.Blur()
	return m.startLoad(loadTarget{todo: id})
}

// runWrite shows the pending notice and sends w in the background.
func (m *Model) runWrite(w *actions.Write) tea.Cmd {
	m.refresh()
	id := m.pushToast(w.Pending())
	ctx := m.ctx
	return func() tea.Msg {
		return writeDoneMsg{toastID: id, res: w.Run(ctx)}
	}
}

func (m Model) handleWriteDone(msg writeDoneMsg) (tea.Model, tea.Cmd) {
	m.replaceToast(msg.toastID, msg.res.Notice())
	m.refresh()
	if created := msg.res.Created; created != nil && m.screen == screenDashboard {
		m.selectTodo(created.ID)
	}
	return m, expireToastCmd(msg.toastID)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "err", err)
	}
}
