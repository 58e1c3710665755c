package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/todoboard/internal/api"
	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/state"
	"github.com/five82/todoboard/internal/todo"
)

// ErrNoOpenTodo is returned by item operations when no list is open.
var ErrNoOpenTodo = errors.New("no todo list is open")

// Options wire an Orchestrator.
type Options struct {
	Store  *state.Store
	Cache  *query.Cache
	API    api.TodoService
	Logger *log.Logger
	Clock  func() time.Time
}

// Orchestrator pairs every user change with its remote write: the store is
// updated first, then the write is sent, and a failed write invalidates the
// affected read so the next fetch restores server truth.
type Orchestrator struct {
	store  *state.Store
	cache  *query.Cache
	api    api.TodoService
	logger *log.Logger
	clock  func() time.Time
	queue  *writeQueue
}

// New validates opts and returns an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("query cache is nil")
	}
	if opts.API == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		store:  opts.Store,
		cache:  opts.Cache,
		api:    opts.API,
		logger: logger,
		clock:  clock,
		queue:  newWriteQueue(),
	}, nil
}

// Store returns the store the orchestrator mutates.
func (o *Orchestrator) Store() *state.Store { return o.store }

// Cache returns the read cache.
func (o *Orchestrator) Cache() *query.Cache { return o.cache }

// LoadDashboard fetches the todo lists and replaces AllTodos. Like any view
// mount it always goes to the network; the cache only de-duplicates and
// tracks status.
func (o *Orchestrator) LoadDashboard(ctx context.Context) error {
	o.cache.Expire(query.TodosKey)
	return o.reloadDashboard(ctx)
}

// OpenTodo fetches one list and makes it the open list.
func (o *Orchestrator) OpenTodo(ctx context.Context, id todo.ID) error {
	if id.IsZero() {
		return fmt.Errorf("todo id required")
	}
	o.cache.Expire(query.TodoKey(id))
	return o.reloadTodo(ctx, id)
}

// CloseTodo leaves the detail view, discarding its items.
func (o *Orchestrator) CloseTodo() {
	o.store.CloseTodo()
}

// ActiveKey is the read backing the current view.
func (o *Orchestrator) ActiveKey() query.Key {
	if open := o.store.Snapshot().OpenTodo; open != nil {
		return query.TodoKey(open.ID)
	}
	return query.TodosKey
}

// Reload refetches key if it backs the current view and reports whether it
// did. Other keys stay stale until their view is shown again.
func (o *Orchestrator) Reload(ctx context.Context, key query.Key) (bool, error) {
	if key != o.ActiveKey() {
		return false, nil
	}
	if key == query.TodosKey {
		return true, o.reloadDashboard(ctx)
	}
	open := o.store.Snapshot().OpenTodo
	if open == nil {
		return false, nil
	}
	return true, o.reloadTodo(ctx, open.ID)
}

func (o *Orchestrator) reloadDashboard(ctx context.Context) error {
	todos, err := query.Fetch(ctx, o.cache, query.TodosKey, o.api.ListTodos)
	if err != nil {
		o.logger.Error("load todos failed", "err", err)
		return err
	}
	o.store.SetAllTodos(todos)
	return nil
}

func (o *Orchestrator) reloadTodo(ctx context.Context, id todo.ID) error {
	t, err := query.Fetch(ctx, o.cache, query.TodoKey(id), func(ctx context.Context) (todo.Todo, error) {
		return o.api.GetTodo(ctx, id)
	})
	if err != nil {
		o.logger.Error("load todo failed", "id", id, "err", err)
		return err
	}
	o.store.OpenTodo(t)
	return nil
}

// AddTodo creates a list. The store is only updated once the server has
// assigned an id, since the id is needed to open the list.
func (o *Orchestrator) AddTodo(title string) (*Write, error) {
	draft := todo.Todo{Title: strings.TrimSpace(title), Items: []todo.Item{}}
	if err := todo.ValidateTodo(draft); err != nil {
		return nil, err
	}
	return o.newWrite(KindAdd, draft.Title, "", query.TodosKey, func(ctx context.Context, res *Result) error {
		created, err := o.api.CreateTodo(ctx, draft)
		if err != nil {
			return err
		}
		o.store.AddTodo(created)
		res.Created = &created
		return nil
	}), nil
}

// RenameTodo changes a list title. The open list is sent from the store,
// which holds its items. Any other list is read back from the server inside
// its lane, since the dashboard copy may predate item writes still in flight.
func (o *Orchestrator) RenameTodo(id todo.ID, title string) (*Write, error) {
	title = strings.TrimSpace(title)
	if err := todo.ValidateTodo(todo.Todo{Title: title}); err != nil {
		return nil, err
	}

	open, isOpen := o.store.OpenTodoWithItems()
	isOpen = isOpen && open.ID == id
	var updated todo.Todo
	if isOpen {
		updated = open
	} else if listed, ok := o.store.Todo(id); ok {
		updated = listed
	} else {
		return nil, fmt.Errorf("todo %s is not loaded", id)
	}
	updated.Title = title

	key := o.ActiveKey()
	o.store.EditTodo(updated)
	return o.newWrite(KindEdit, title, id, key, func(ctx context.Context, _ *Result) error {
		payload := updated
		if !isOpen {
			current, err := o.api.GetTodo(ctx, id)
			if err != nil {
				return err
			}
			payload = current
			payload.Title = title
		}
		_, err := o.api.UpdateTodo(ctx, payload)
		return err
	}), nil
}

// DeleteTodo removes a list.
func (o *Orchestrator) DeleteTodo(id todo.ID) (*Write, error) {
	t, ok := o.store.Todo(id)
	if !ok {
		return nil, fmt.Errorf("todo %s is not loaded", id)
	}
	o.store.RemoveTodo(id)
	return o.newWrite(KindDelete, t.Title, id, query.TodosKey, func(ctx context.Context, _ *Result) error {
		if err := o.api.DeleteTodo(ctx, id); err != nil {
			return err
		}
		o.cache.Forget(query.TodoKey(id))
		return nil
	}), nil
}

// BeginNewItem shows an unsaved item draft.
func (o *Orchestrator) BeginNewItem() (todo.Item, error) {
	if o.store.Snapshot().OpenTodo == nil {
		return todo.Item{}, ErrNoOpenTodo
	}
	o.store.SetAddingNewItem(true)
	return todo.NewItemDraft(o.clock()), nil
}

// CancelNewItem discards the draft.
func (o *Orchestrator) CancelNewItem() {
	o.store.SetAddingNewItem(false)
}

// SaveNewItem validates and adds the draft. On validation failure nothing
// changes and the draft stays open.
func (o *Orchestrator) SaveNewItem(item todo.Item) (*Write, error) {
	item = trimItem(item)
	if item.ID == "" {
		item.ID = todo.NewItemID()
	}
	if err := todo.ValidateItem(item); err != nil {
		return nil, err
	}
	return o.itemWrite(KindAdd, item.Title, func() bool {
		o.store.AddItem(item)
		o.store.SetAddingNewItem(false)
		return true
	})
}

// EditItem validates and replaces an existing item.
func (o *Orchestrator) EditItem(item todo.Item) (*Write, error) {
	item = trimItem(item)
	if err := todo.ValidateItem(item); err != nil {
		return nil, err
	}
	return o.itemWrite(KindEdit, item.Title, func() bool {
		if _, ok := o.store.Item(item.ID); !ok {
			return false
		}
		o.store.EditItem(item)
		return true
	})
}

// ToggleFinished flips the finished flag of an item.
func (o *Orchestrator) ToggleFinished(itemID string) (*Write, error) {
	var title string
	return o.itemWrite(KindEdit, "", func() bool {
		item, ok := o.store.Item(itemID)
		if !ok {
			return false
		}
		item.Finished = !item.Finished
		title = item.Title
		o.store.EditItem(item)
		return true
	}, func(w *Write) { w.name = title })
}

// DeleteItem removes an item.
func (o *Orchestrator) DeleteItem(itemID string) (*Write, error) {
	var title string
	return o.itemWrite(KindDelete, "", func() bool {
		item, ok := o.store.Item(itemID)
		if !ok {
			return false
		}
		title = item.Title
		o.store.RemoveItem(itemID)
		return true
	}, func(w *Write) { w.name = title })
}

// itemWrite applies change to the open list and builds the whole-todo write
// from the state right after the change.
func (o *Orchestrator) itemWrite(kind Kind, name string, change func() bool, adjust ...func(*Write)) (*Write, error) {
	open := o.store.Snapshot().OpenTodo
	if open == nil {
		return nil, ErrNoOpenTodo
	}
	if !change() {
		return nil, fmt.Errorf("item not found in %q", open.Title)
	}
	payload, ok := o.store.OpenTodoWithItems()
	if !ok || payload.ID != open.ID {
		return nil, ErrNoOpenTodo
	}
	w := o.newWrite(kind, name, payload.ID, query.TodoKey(payload.ID), func(ctx context.Context, _ *Result) error {
		_, err := o.api.UpdateTodo(ctx, payload)
		return err
	})
	for _, fn := range adjust {
		fn(w)
	}
	return w, nil
}

func trimItem(item todo.Item) todo.Item {
	item.Title = strings.TrimSpace(item.Title)
	item.Description = strings.TrimSpace(item.Description)
	item.Date = strings.TrimSpace(item.Date)
	return item
}
