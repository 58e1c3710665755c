package actions

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/todo"
)

//go:embed demo.json
var demoJSON []byte

// demoConcurrency bounds parallel requests during an import.
const demoConcurrency = 4

type demoItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueInHours  float64 `json:"due_in_hours"`
	Finished    bool    `json:"finished"`
}

type demoTodo struct {
	Title string     `json:"title"`
	Items []demoItem `json:"items"`
}

// DemoTodos builds the demo set with deadlines relative to now.
func DemoTodos(now time.Time) ([]todo.Todo, error) {
	var raw []demoTodo
	if err := json.Unmarshal(demoJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode demo data: %w", err)
	}
	out := make([]todo.Todo, 0, len(raw))
	for _, d := range raw {
		t := todo.Todo{Title: d.Title, Items: make([]todo.Item, 0, len(d.Items))}
		for _, it := range d.Items {
			due := now.Add(time.Duration(it.DueInHours * float64(time.Hour)))
			t.Items = append(t.Items, todo.Item{
				ID:          todo.NewItemID(),
				Title:       it.Title,
				Description: it.Description,
				Date:        todo.FormatDeadline(due),
				Finished:    it.Finished,
			})
		}
		out = append(out, t)
	}
	return out, nil
}

// ImportDemo replaces every list with the demo set. Run deletes all loaded
// lists, then creates the demo lists, then replaces AllTodos with what the
// server returned. Any failed request fails the whole import; requests that
// already succeeded are not undone.
func (o *Orchestrator) ImportDemo() (*Write, error) {
	demo, err := DemoTodos(o.clock())
	if err != nil {
		return nil, err
	}
	for _, t := range demo {
		if err := todo.ValidateTodo(t); err != nil {
			return nil, fmt.Errorf("demo data: %w", err)
		}
	}
	existing := o.store.Snapshot().AllTodos

	return o.newWrite(KindImport, "", "", query.TodosKey, func(ctx context.Context, res *Result) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(demoConcurrency)
		for _, t := range existing {
			id := t.ID
			g.Go(func() error {
				return o.api.DeleteTodo(gctx, id)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("remove existing todos: %w", err)
		}

		created := make([]todo.Todo, len(demo))
		g, gctx = errgroup.WithContext(ctx)
		g.SetLimit(demoConcurrency)
		for i, t := range demo {
			g.Go(func() error {
				c, err := o.api.CreateTodo(gctx, t)
				if err != nil {
					return err
				}
				created[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("insert demo todos: %w", err)
		}

		o.store.SetAllTodos(created)
		res.Imported = todo.CloneTodos(created)
		return nil
	}), nil
}
