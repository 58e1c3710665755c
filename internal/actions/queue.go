package actions

import (
	"sync"

	"github.com/five82/todoboard/internal/todo"
)

// writeQueue serializes writes per todo. Each write takes a ticket when its
// local change is applied; tickets grow monotonically, so a larger ticket
// carries a payload that includes every earlier change to that todo. Writes
// whose payload is not taken from the open todo read the todo back from the
// server inside the lane to keep that true. A write whose ticket is older
// than one already sent is skipped.
type writeQueue struct {
	mu    sync.Mutex
	next  uint64
	lanes map[todo.ID]*lane
}

type lane struct {
	mu   sync.Mutex
	sent uint64
}

func newWriteQueue() *writeQueue {
	return &writeQueue{lanes: make(map[todo.ID]*lane)}
}

func (q *writeQueue) ticket() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	return q.next
}

func (q *writeQueue) lane(id todo.ID) *lane {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.lanes[id]
	if !ok {
		l = &lane{}
		q.lanes[id] = l
	}
	return l
}

// run executes send while holding the todo's lane. superseded is true when a
// newer write for the same todo was already sent and send was skipped.
func (q *writeQueue) run(id todo.ID, ticket uint64, send func() error) (superseded bool, err error) {
	l := q.lane(id)
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket < l.sent {
		return true, nil
	}
	if err := send(); err != nil {
		return false, err
	}
	l.sent = ticket
	return false, nil
}
