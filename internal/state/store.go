package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/todoboard/internal/todo"
)

// Snapshot is a point-in-time copy of the store. Mutating it has no effect on
// the store.
type Snapshot struct {
	AllTodos      []todo.Todo
	OpenTodo      *todo.Todo // header of the open list (items live in AllItems); nil on the dashboard
	AllItems      []todo.Item
	FilterCounts  todo.FilterCounts
	AddingNewItem bool
	SearchTerm    string
	Filter        todo.Filter
}

// Searching reports whether a search term is active.
func (s Snapshot) Searching() bool {
	return s.SearchTerm != ""
}

// Store is the in-memory copy of the todos and items of the current view.
// State only changes through the transition methods; each transition runs
// under the lock and leaves FilterCounts consistent with AllItems.
type Store struct {
	mu       sync.RWMutex
	clock    func() time.Time
	todos    []todo.Todo
	open     *todo.Todo
	items    []todo.Item
	counts   todo.FilterCounts
	adding   bool
	search   string
	filter   todo.Filter
	watchers map[int]chan struct{}
	nextID   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to classify items.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{clock: time.Now, filter: todo.FilterAll}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		AllTodos:      todo.CloneTodos(s.todos),
		AllItems:      todo.CloneItems(s.items),
		FilterCounts:  s.counts,
		AddingNewItem: s.adding,
		SearchTerm:    s.search,
		Filter:        s.filter,
	}
	if s.open != nil {
		header := s.open.Clone()
		snap.OpenTodo = &header
	}
	return snap
}

// Todo returns a copy of the todo with id from AllTodos.
func (s *Store) Todo(id todo.ID) (todo.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.todoIndex(id)
	if idx < 0 {
		return todo.Todo{}, false
	}
	return s.todos[idx].Clone(), true
}

// Item returns a copy of the item with id from AllItems.
func (s *Store) Item(id string) (todo.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.itemIndex(id)
	if idx < 0 {
		return todo.Item{}, false
	}
	return s.items[idx], true
}

// OpenTodoWithItems returns the open todo carrying the current item list,
// which is the payload for whole-todo item writes.
func (s *Store) OpenTodoWithItems() (todo.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.open == nil {
		return todo.Todo{}, false
	}
	t := s.open.Clone()
	t.Items = todo.CloneItems(s.items)
	if t.Items == nil {
		t.Items = []todo.Item{}
	}
	return t, true
}

// SetAllTodos replaces the todo list wholesale.
func (s *Store) SetAllTodos(todos []todo.Todo) {
	s.mutate(func() {
		s.todos = todo.CloneTodos(todos)
	})
}

// AddTodo appends a created todo. Todos without a server id are ignored and
// AddTodo reports false.
func (s *Store) AddTodo(t todo.Todo) bool {
	if t.IsDraft() {
		return false
	}
	s.mutate(func() {
		s.todos = append(s.todos, t.Clone())
	})
	return true
}

// RemoveTodo drops the todo with id. Unknown ids are a no-op.
func (s *Store) RemoveTodo(id todo.ID) {
	s.mutate(func() {
		s.todos = slices.DeleteFunc(s.todos, func(t todo.Todo) bool { return t.ID == id })
	})
}

// EditTodo replaces the todo with the same id. Unknown ids are a no-op.
func (s *Store) EditTodo(updated todo.Todo) {
	s.mutate(func() {
		if idx := s.todoIndex(updated.ID); idx >= 0 {
			s.todos[idx] = updated.Clone()
		}
		if s.open != nil && s.open.ID == updated.ID {
			s.open.Title = updated.Title
		}
	})
}

// OpenTodo makes t the open list and replaces AllItems with its items.
func (s *Store) OpenTodo(t todo.Todo) {
	s.mutate(func() {
		header := todo.Todo{ID: t.ID, Title: t.Title}
		s.open = &header
		s.setItemsLocked(t.Items)
		s.adding = false
	})
}

// CloseTodo discards the open list and its items.
func (s *Store) CloseTodo() {
	s.mutate(func() {
		s.open = nil
		s.setItemsLocked(nil)
		s.adding = false
	})
}

// SetAllItems replaces AllItems wholesale.
func (s *Store) SetAllItems(items []todo.Item) {
	s.mutate(func() {
		s.setItemsLocked(items)
	})
}

// AddItem prepends item so new items show first.
func (s *Store) AddItem(item todo.Item) {
	s.mutate(func() {
		items := make([]todo.Item, 0, len(s.items)+1)
		items = append(items, item)
		items = append(items, s.items...)
		s.setItemsLocked(items)
	})
}

// RemoveItem drops the item with id. Unknown ids are a no-op.
func (s *Store) RemoveItem(id string) {
	s.mutate(func() {
		items := slices.DeleteFunc(todo.CloneItems(s.items), func(it todo.Item) bool { return it.ID == id })
		s.setItemsLocked(items)
	})
}

// EditItem replaces the item with the same id. Unknown ids are a no-op.
func (s *Store) EditItem(updated todo.Item) {
	s.mutate(func() {
		idx := s.itemIndex(updated.ID)
		if idx < 0 {
			return
		}
		items := todo.CloneItems(s.items)
		items[idx] = updated
		s.setItemsLocked(items)
	})
}

// SetAddingNewItem toggles the new item draft.
func (s *Store) SetAddingNewItem(adding bool) {
	s.mutate(func() { s.adding = adding })
}

// SetSearchTerm stores the dashboard search term.
func (s *Store) SetSearchTerm(term string) {
	s.mutate(func() { s.search = term })
}

// SetFilter selects which items the detail view shows.
func (s *Store) SetFilter(f todo.Filter) {
	s.mutate(func() { s.filter = todo.ParseFilter(string(f)) })
}

// RecomputeCounts reclassifies items against the current time. Deadlines pass
// without any transition, so views call this on their refresh tick.
func (s *Store) RecomputeCounts() {
	s.mu.Lock()
	counts := todo.CountFilters(s.items, s.clock())
	changed := counts != s.counts
	s.counts = counts
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Subscribe returns a channel that receives a value after state changes.
// Notifications coalesce: a slow reader sees one pending signal, not one per
// transition. Call cancel to stop receiving.
func (s *Store) Subscribe() (changes <-chan struct{}, cancel func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	if s.watchers == nil {
		s.watchers = make(map[int]chan struct{})
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// setItemsLocked is the only place items are assigned, so counts cannot
// drift from them.
func (s *Store) setItemsLocked(items []todo.Item) {
	s.items = todo.CloneItems(items)
	s.counts = todo.CountFilters(s.items, s.clock())
}

func (s *Store) todoIndex(id todo.ID) int {
	return slices.IndexFunc(s.todos, func(t todo.Todo) bool { return t.ID == id })
}

func (s *Store) itemIndex(id string) int {
	return slices.IndexFunc(s.items, func(it todo.Item) bool { return it.ID == id })
}
