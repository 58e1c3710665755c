package ui

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/api"
	"github.com/five82/todoboard/internal/api/apitest"
	"github.com/five82/todoboard/internal/prefs"
	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/state"
	"github.com/five82/todoboard/internal/todo"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seed() []todo.Todo {
	return []todo.Todo{
		{ID: "1", Title: "Groceries", Items: []todo.Item{
			{ID: "a", Title: "Milk", Description: "Oat", Date: "2024-05-11T00:00:00.000Z"},
			{ID: "b", Title: "Bread", Date: "2024-05-01T00:00:00.000Z"},
		}},
		{ID: "2", Title: "Home", Items: []todo.Item{}},
	}
}

type harness struct {
	t   *testing.T
	srv *apitest.Server
	m   Model
	now time.Time
}

func newHarness(t *testing.T, opts Options, todos ...todo.Todo) *harness {
	t.Helper()
	srv := apitest.New(todos...)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	h := &harness{t: t, srv: srv, now: testNow}
	clock := func() time.Time { return h.now }
	orch, err := actions.New(actions.Options{
		Store: state.NewStore(state.WithClock(clock)),
		Cache: query.New(),
		API:   client,
		Clock: clock,
	})
	if err != nil {
		t.Fatalf("actions.New: %v", err)
	}
	opts.Actions = orch
	opts.Clock = clock
	if opts.Prefs.Theme == "" {
		opts.Prefs = prefs.Default()
	}

	h.m = New(opts)
	t.Cleanup(h.m.Close)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.finishLoad()
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// finishLoad performs the pending read synchronously.
func (h *harness) finishLoad() {
	h.t.Helper()
	if !h.m.loading {
		h.t.Fatalf("no read in flight")
	}
	h.update(h.m.loadCmd(h.m.want)())
}

func (h *harness) press(keys ...string) tea.Cmd {
	h.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.update(keyMsg(k))
	}
	return cmd
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// finishWrite runs a write command and feeds the result back.
func (h *harness) finishWrite(cmd tea.Cmd) actions.Result {
	h.t.Helper()
	if cmd == nil {
		h.t.Fatalf("expected a write command")
	}
	done, ok := cmd().(writeDoneMsg)
	if !ok {
		h.t.Fatalf("command did not produce a write result")
	}
	h.update(done)
	return done.res
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestDashboard_ShowsListsNewestFirst(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)

	view := h.m.View()
	if !strings.Contains(view, "Groceries") || !strings.Contains(view, "Home") {
		t.Fatalf("dashboard view missing lists:\n%s", view)
	}
	todos := h.m.visibleTodos()
	if len(todos) != 2 || todos[0].Title != "Home" {
		t.Fatalf("visible = %+v, want Home first", todos)
	}

	h.press("o")
	if todos := h.m.visibleTodos(); todos[0].Title != "Groceries" {
		t.Fatalf("order toggle had no effect: %+v", todos)
	}
}

func TestDashboard_SearchFiltersAndSummarizes(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)

	h.press("/")
	if !h.m.searching {
		t.Fatalf("search input not active")
	}
	h.typeText("milk")
	if got := h.m.snap.SearchTerm; got != "milk" {
		t.Fatalf("search term = %q", got)
	}
	todos := h.m.visibleTodos()
	if len(todos) != 1 || todos[0].Title != "Groceries" {
		t.Fatalf("visible = %+v", todos)
	}
	if got := h.m.searchSummary(); got != "0 lists, 1 item" {
		t.Fatalf("summary = %q", got)
	}

	h.press("esc")
	if h.m.searching || h.m.snap.SearchTerm != "" {
		t.Fatalf("esc did not clear the search")
	}
}

func TestDashboard_AddListThroughForm(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)
	h.press("o") // oldest first, so the new list lands last

	h.press("n")
	if h.m.form == nil {
		t.Fatalf("form not open")
	}
	h.press("enter")
	if h.m.form == nil || h.m.form.err != "Title is required" {
		t.Fatalf("blank title accepted, form = %+v", h.m.form)
	}

	h.typeText("Travel")
	res := h.finishWrite(h.press("enter"))
	if !res.OK() {
		t.Fatalf("add failed: %v", res.Err)
	}
	if h.m.form != nil {
		t.Fatalf("form still open after save")
	}
	if len(h.m.snap.AllTodos) != 3 {
		t.Fatalf("store holds %d lists", len(h.m.snap.AllTodos))
	}
	if len(h.m.toasts) != 1 || h.m.toasts[0].notice.String() != `Successfully added "Travel"` {
		t.Fatalf("toasts = %+v", h.m.toasts)
	}
	if sel, ok := h.m.selectedTodo(); !ok || sel.ID != res.Created.ID || h.m.cursor != 2 {
		t.Fatalf("selected %+v at %d, want the new list", sel, h.m.cursor)
	}
}

func TestDashboard_DeleteAsksFirst(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)

	h.press("d")
	if h.m.confirm == nil {
		t.Fatalf("delete did not ask for confirmation")
	}
	h.press("n")
	if h.m.confirm != nil || len(h.m.snap.AllTodos) != 2 {
		t.Fatalf("cancel changed state")
	}

	h.press("d")
	cmd := h.press("y")
	if len(h.m.snap.AllTodos) != 1 {
		t.Fatalf("delete not applied before the request")
	}
	if res := h.finishWrite(cmd); !res.OK() {
		t.Fatalf("delete failed: %v", res.Err)
	}
	if n := len(h.srv.Todos()); n != 1 {
		t.Fatalf("server holds %d lists", n)
	}
}

func TestDetail_ItemLifecycle(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)

	h.press("o", "enter") // oldest first, open Groceries
	if h.m.screen != screenDetail || !h.m.loading {
		t.Fatalf("open did not start a read")
	}
	h.finishLoad()
	if h.m.snap.OpenTodo == nil || h.m.snap.OpenTodo.Title != "Groceries" {
		t.Fatalf("open todo = %+v", h.m.snap.OpenTodo)
	}
	if !strings.Contains(h.m.View(), "Milk") {
		t.Fatalf("detail view missing items:\n%s", h.m.View())
	}

	h.press("a")
	if h.m.form == nil || !h.m.snap.AddingNewItem {
		t.Fatalf("item draft not opened")
	}
	h.typeText("Eggs")
	h.m.form.inputs[fieldDate].SetValue("garbage")
	h.press("ctrl+s")
	if h.m.form == nil || h.m.form.focus != fieldDate {
		t.Fatalf("invalid date not focused, form = %+v", h.m.form)
	}
	if h.m.form.err != "Deadline date is required" {
		t.Fatalf("form error = %q", h.m.form.err)
	}
	if !h.m.snap.AddingNewItem || len(h.m.snap.AllItems) != 2 {
		t.Fatalf("validation failure changed the store")
	}

	h.m.form.inputs[fieldDate].SetValue("2024-05-20 09:30")
	res := h.finishWrite(h.press("ctrl+s"))
	if !res.OK() {
		t.Fatalf("save failed: %v", res.Err)
	}
	if h.m.snap.AddingNewItem || len(h.m.snap.AllItems) != 3 {
		t.Fatalf("item not added: %+v", h.m.snap)
	}

	h.press("4")
	if h.m.snap.Filter != todo.FilterMissed {
		t.Fatalf("filter = %q", h.m.snap.Filter)
	}
	items := h.m.visibleItems()
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("missed items = %+v", items)
	}
	res = h.finishWrite(h.press("space"))
	if !res.OK() {
		t.Fatalf("toggle failed: %v", res.Err)
	}
	if h.m.snap.FilterCounts.Finished != 1 || h.m.snap.FilterCounts.Missed != 0 {
		t.Fatalf("counts = %+v", h.m.snap.FilterCounts)
	}
	server := h.srv.Todos()[0]
	if len(server.Items) != 3 {
		t.Fatalf("server items = %+v", server.Items)
	}

	h.press("esc")
	if h.m.screen != screenDashboard || h.m.snap.OpenTodo != nil || !h.m.loading {
		t.Fatalf("esc did not return to the dashboard")
	}
	h.finishLoad()
}

func TestDetail_FailedWriteShowsErrorToast(t *testing.T) {
	h := newHarness(t, Options{OpenTodo: "1"}, seed()...)
	if h.m.screen != screenDetail {
		t.Fatalf("screen = %v", h.m.screen)
	}

	h.srv.Fail("PUT /todos/1", http.StatusInternalServerError)
	res := h.finishWrite(h.press("d"))
	if res.OK() || res.Invalidated != query.TodoKey("1") {
		t.Fatalf("result = %+v", res)
	}
	last := h.m.toasts[len(h.m.toasts)-1].notice
	if last.Level != actions.LevelError || last.Title != "Failed to remove" {
		t.Fatalf("toast = %+v", last)
	}
}

func TestLoadError_BlocksUntilRetry(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)
	h.srv.Fail(http.MethodGet, http.StatusServiceUnavailable)

	h.press("enter") // open the selected list
	h.finishLoad()
	if h.m.loadErr == nil {
		t.Fatalf("load error not recorded")
	}
	if !strings.Contains(h.m.View(), "Could not load") {
		t.Fatalf("error view not shown:\n%s", h.m.View())
	}
	h.press("a")
	if h.m.form != nil {
		t.Fatalf("keys reached the detail view behind the error")
	}

	h.srv.Recover()
	h.press("r")
	if !h.m.loading {
		t.Fatalf("retry did not start a read")
	}
	h.finishLoad()
	if h.m.loadErr != nil || h.m.snap.OpenTodo == nil {
		t.Fatalf("retry did not recover: err=%v", h.m.loadErr)
	}
}

func TestDetail_TickReclassifiesPassedDeadlines(t *testing.T) {
	h := newHarness(t, Options{OpenTodo: "1"}, seed()...)
	if got := h.m.snap.FilterCounts; got.Active != 1 || got.Missed != 1 {
		t.Fatalf("counts at load = %+v", got)
	}

	h.now = testNow.Add(48 * time.Hour)
	h.update(tickMsg(h.now))

	counts := h.m.snap.FilterCounts
	if counts.All != 2 || counts.Active != 0 || counts.Missed != 2 {
		t.Fatalf("counts after tick = %+v", counts)
	}
	h.press("4")
	if got := len(h.m.visibleItems()); got != counts.Missed {
		t.Fatalf("missed filter lists %d items, tab says %d", got, counts.Missed)
	}
	if !strings.Contains(h.m.View(), "Missed 2") {
		t.Fatalf("missed tab not updated:\n%s", h.m.View())
	}
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	h := newHarness(t, Options{PrefsPath: path}, seed()...)

	h.press("T")
	if h.m.theme.Name != "Light" {
		t.Fatalf("theme = %q", h.m.theme.Name)
	}
	saved := prefs.Load(path)
	if saved.Theme != "Light" {
		t.Fatalf("saved theme = %q", saved.Theme)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	h := newHarness(t, Options{}, seed()...)
	h.press("?")
	if !h.m.showHelp || !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	h.press("x")
	if h.m.showHelp {
		t.Fatalf("help still shown")
	}
}

func TestActivityViewReadsLogFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "todoboard.log")
	h := newHarness(t, Options{LogFile: logFile}, seed()...)

	cmd := h.press("L")
	if h.m.screen != screenActivity || cmd == nil {
		t.Fatalf("activity screen not opened")
	}
	h.update(cmd())
	if !strings.Contains(h.m.View(), "No activity yet.") {
		t.Fatalf("empty log not reported:\n%s", h.m.View())
	}
	h.press("esc")
	if h.m.screen != screenDashboard {
		t.Fatalf("esc did not leave the activity view")
	}
}
