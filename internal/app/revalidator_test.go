package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/api"
	"github.com/five82/todoboard/internal/api/apitest"
	"github.com/five82/todoboard/internal/logging"
	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/state"
	"github.com/five82/todoboard/internal/todo"
)

type fakeReloader struct {
	mu   sync.Mutex
	keys []query.Key
	err  error
	hit  chan struct{}
}

func (f *fakeReloader) Reload(_ context.Context, key query.Key) (bool, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	f.hit <- struct{}{}
	return f.err == nil, f.err
}

func TestRevalidator_ReloadsEachKeyUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	keys := make(chan query.Key, 2)
	r := &fakeReloader{hit: make(chan struct{}, 2), err: errors.New("offline")}
	done := StartRevalidator(ctx, keys, r, logging.Discard())

	keys <- query.TodosKey
	keys <- query.TodoKey("4")
	for i := 0; i < 2; i++ {
		select {
		case <-r.hit:
		case <-time.After(2 * time.Second):
			t.Fatalf("reload %d not triggered", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("revalidator did not stop")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) != 2 || r.keys[0] != query.TodosKey || r.keys[1] != query.TodoKey("4") {
		t.Fatalf("reloaded keys = %v", r.keys)
	}
}

func TestRevalidator_RollsBackFailedDelete(t *testing.T) {
	srv := apitest.New(todo.Todo{ID: "1", Title: "Groceries"}, todo.Todo{ID: "2", Title: "Home"})
	defer srv.Close()
	client, err := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := state.NewStore()
	cache := query.New()
	orch, err := actions.New(actions.Options{Store: store, Cache: cache, API: client})
	if err != nil {
		t.Fatalf("actions.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := orch.LoadDashboard(ctx); err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	changes, unsubscribe := store.Subscribe()
	defer unsubscribe()
	done := StartRevalidator(ctx, cache.Invalidated(), orch, logging.Discard())

	srv.Fail(http.MethodDelete, http.StatusInternalServerError)
	w, err := orch.DeleteTodo("1")
	if err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if res := w.Run(ctx); res.OK() {
		t.Fatalf("delete unexpectedly succeeded")
	}

	deadline := time.After(3 * time.Second)
	for {
		if _, ok := store.Todo("1"); ok {
			break
		}
		select {
		case <-changes:
		case <-deadline:
			t.Fatalf("deleted todo was not restored")
		}
	}

	cancel()
	<-done
}
