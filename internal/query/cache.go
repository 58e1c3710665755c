// Package query caches remote reads and tracks their status per key.
//
// A key names a logical read ("todos", "todo:7"). Fetch serves fresh cached
// data without touching the network; after Invalidate the next Fetch for that
// key goes to the loader again. Concurrent fetches of one key share a single
// loader call.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/todoboard/internal/todo"
)

// Key identifies a cached read.
type Key string

// TodosKey is the dashboard list.
const TodosKey Key = "todos"

// TodoKey is the detail read for one todo.
func TodoKey(id todo.ID) Key {
	return Key("todo:" + id.String())
}

// Phase is the lifecycle of a read.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is the observable status of one key.
type State struct {
	Phase     Phase
	Err       error
	Stale     bool
	UpdatedAt time.Time
	Fetches   int // loader calls made for this key
}

type entry struct {
	state State
	data  any
}

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key]*entry
	group       singleflight.Group
	invalidated chan Key
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries:     make(map[Key]*entry),
		invalidated: make(chan Key, 16),
	}
}

// Fetch returns the cached value for key when it is fresh, otherwise it calls
// load and caches the result. A failed load keeps no data, so the next Fetch
// retries.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("query cache is nil")
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if e.state.Phase == PhaseSuccess && !e.state.Stale {
		if v, ok := e.data.(T); ok {
			c.mu.Unlock()
			return v, nil
		}
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(string(key), func() (any, error) {
		c.mu.Lock()
		e := c.entryLocked(key)
		e.state.Phase = PhasePending
		e.state.Fetches++
		c.mu.Unlock()

		data, err := load(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		e.state.UpdatedAt = time.Now()
		if err != nil {
			e.state.Phase = PhaseError
			e.state.Err = err
			e.data = nil
			return nil, err
		}
		e.state.Phase = PhaseSuccess
		e.state.Err = nil
		e.state.Stale = false
		e.data = data
		return data, nil
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached %T, want %T", key, v, zero)
	}
	return typed, nil
}

// Invalidate marks key stale so the next Fetch reloads it, and announces the
// key on Invalidated. Invalidating twice is harmless.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.state.Stale = true
	c.mu.Unlock()

	select {
	case c.invalidated <- key:
	default:
	}
}

// Expire marks key stale without announcing it. Views use it on mount to
// force a fresh read.
func (c *Cache) Expire(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entryLocked(key).state.Stale = true
}

// Invalidated delivers keys passed to Invalidate. Deliveries are dropped when
// nobody is reading and the buffer is full; the key stays stale regardless.
func (c *Cache) Invalidated() <-chan Key {
	return c.invalidated
}

// State reports the status of key.
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return State{}
}

// Forget drops key entirely.
func (c *Cache) Forget(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}
