package actions

import (
	"context"

	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/todo"
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	case KindImport:
		return "import"
	default:
		return "unknown"
	}
}

// Write is a change whose local half has already been applied. Run sends the
// remote half. A Write is meant to be run once.
type Write struct {
	o      *Orchestrator
	kind   Kind
	name   string
	lane   todo.ID
	ticket uint64
	key    query.Key
	send   func(context.Context, *Result) error
}

// Result is the outcome of a Write. When Err is set the compensating action
// has already run: Invalidated names the read that was marked stale so the
// next fetch overwrites the optimistic change.
type Result struct {
	Kind        Kind
	Name        string
	Err         error
	Invalidated query.Key
	Superseded  bool       // skipped because a newer write for the same list was sent
	Created     *todo.Todo // set by a successful AddTodo
	Imported    []todo.Todo
}

// OK reports whether the write persisted.
func (r Result) OK() bool { return r.Err == nil }

// Notice is the message to show for this result.
func (r Result) Notice() Notice {
	return resultNotice(r.Kind, r.Name, r.Err)
}

func (o *Orchestrator) newWrite(kind Kind, name string, lane todo.ID, key query.Key, send func(context.Context, *Result) error) *Write {
	return &Write{
		o:      o,
		kind:   kind,
		name:   name,
		lane:   lane,
		ticket: o.queue.ticket(),
		key:    key,
		send:   send,
	}
}

// Kind reports the kind of change.
func (w *Write) Kind() Kind { return w.kind }

// Name is the title of the entity being written.
func (w *Write) Name() string { return w.name }

// Pending is the message to show while Run is in flight.
func (w *Write) Pending() Notice {
	return PendingNotice(w.kind, w.name)
}

// Run sends the write. On failure it invalidates the affected read before
// returning.
func (w *Write) Run(ctx context.Context) Result {
	res := Result{Kind: w.kind, Name: w.name}

	var err error
	if w.lane.IsZero() {
		err = w.send(ctx, &res)
	} else {
		res.Superseded, err = w.o.queue.run(w.lane, w.ticket, func() error {
			return w.send(ctx, &res)
		})
	}

	if err != nil {
		res.Err = err
		if w.key != "" {
			w.o.cache.Invalidate(w.key)
			res.Invalidated = w.key
		}
		w.o.logger.Warn("write failed", "action", w.kind, "name", w.name, "invalidated", w.key, "err", err)
		return res
	}
	if res.Superseded {
		w.o.logger.Debug("write superseded", "action", w.kind, "name", w.name, "todo", w.lane)
		return res
	}
	w.o.logger.Info("write persisted", "action", w.kind, "name", w.name)
	return res
}
