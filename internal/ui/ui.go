package ui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/logtail"
	"github.com/five82/todoboard/internal/prefs"
	"github.com/five82/todoboard/internal/state"
	"github.com/five82/todoboard/internal/todo"
)

type screen int

const (
	screenDashboard screen = iota
	screenDetail
	screenActivity
)

const (
	clockTick     = 30 * time.Second
	toastLifetime = 4 * time.Second
	activityLines = 200
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Actions   *actions.Orchestrator
	Logger    *log.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	ThemeName string // overrides Prefs.Theme when set
	LogFile   string
	OpenTodo  todo.ID // list to open instead of the dashboard
	Clock     func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	orch      *actions.Orchestrator
	store     *state.Store
	logger    *log.Logger
	clock     func() time.Time
	prefs     prefs.Prefs
	prefsPath string
	logFile   string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	theme   Theme
	width   int
	height  int

	screen     screen
	prevScreen screen
	snap       state.Snapshot
	changes    <-chan struct{}
	unsub      func()

	// Reads
	loading bool
	loadErr error
	want    loadTarget
	startup loadTarget

	// Dashboard
	cursor    int
	searching bool
	search    textinput.Model

	// Detail
	itemCursor int

	// Overlays
	form     *form
	confirm  *confirmation
	showHelp bool

	toasts    []toast
	nextToast int

	activity    []logtail.Entry
	activityErr error
}

// New creates the root model and subscribes it to the store.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	themeName := opts.Prefs.Theme
	if opts.ThemeName != "" {
		themeName = opts.ThemeName
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search lists and items"
	search.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:       ctx,
		orch:      opts.Actions,
		logger:    logger,
		clock:     clock,
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		logFile:   opts.LogFile,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		theme:     GetTheme(themeName),
		search:    search,
		startup:   loadTarget{todo: opts.OpenTodo},
		unsub:     func() {},
	}
	if m.orch != nil {
		m.store = m.orch.Store()
		m.changes, m.unsub = m.store.Subscribe()
		m.snap = m.store.Snapshot()
	}
	if !opts.OpenTodo.IsZero() {
		m.screen = screenDetail
	}
	m.prefs.Theme = m.theme.Name
	m.loading = true
	m.want = m.startup
	return m
}

// Close releases the store subscription.
func (m Model) Close() {
	m.unsub()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		tickCmd(clockTick),
		m.loadCmd(m.startup),
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// Deadlines pass without a store transition.
		if m.store != nil {
			m.store.RecomputeCounts()
		}
		m.refresh()
		return m, tickCmd(clockTick)

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case loadedMsg:
		return m.handleLoaded(msg)

	case writeDoneMsg:
		return m.handleWriteDone(msg)

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case activityMsg:
		m.activity = msg.entries
		m.activityErr = msg.err
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	switch {
	case m.loading:
		return m.renderLoading()
	case m.loadErr != nil:
		return m.renderLoadError()
	case m.showHelp:
		return m.renderHelp()
	case m.confirm != nil:
		return m.renderConfirm()
	case m.form != nil:
		return m.renderForm()
	}
	return m.renderMain()
}

// refresh copies the current store state into the model.
func (m *Model) refresh() {
	if m.store == nil {
		return
	}
	m.snap = m.store.Snapshot()
	m.clampCursors()
}

func (m *Model) clampCursors() {
	if n := len(m.visibleTodos()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if n := len(m.visibleItems()); m.itemCursor >= n {
		m.itemCursor = max(n-1, 0)
	}
}

// Messages

type tickMsg time.Time

type storeChangedMsg struct{}

type loadTarget struct {
	todo todo.ID // zero loads the dashboard
}

type loadedMsg struct {
	target loadTarget
	err    error
}

type writeDoneMsg struct {
	toastID int
	res     actions.Result
}

type toastExpiredMsg struct{ id int }

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m Model) loadCmd(t loadTarget) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	if orch == nil {
		return nil
	}
	return func() tea.Msg {
		if t.todo.IsZero() {
			return loadedMsg{target: t, err: orch.LoadDashboard(ctx)}
		}
		return loadedMsg{target: t, err: orch.OpenTodo(ctx, t.todo)}
	}
}

func expireToastCmd(id int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func loadActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, activityLines)
		return activityMsg{entries: entries, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
