// Package state holds the client-side copy of the todo lists and items being
// viewed.
//
// # Overview
//
// Store is the single source of truth for the UI. It is filled from the
// remote API (dashboard list fetch, detail fetch) and then mutated locally in
// lockstep with remote writes. Nothing here talks to the network; see the
// actions package for the flows that pair a local transition with a remote
// write.
//
// # Transitions
//
// Fields are unexported. Callers change state only through named transitions:
//
//	SetAllTodos  AddTodo     RemoveTodo   EditTodo
//	OpenTodo     CloseTodo   SetAllItems
//	AddItem      RemoveItem  EditItem
//	SetAddingNewItem  SetSearchTerm  SetFilter
//
// Each transition is atomic. Any transition that touches the item list
// recomputes FilterCounts before releasing the lock, so no reader can observe
// counts that disagree with AllItems.
//
// AllItems always belongs to exactly one open todo. OpenTodo replaces it, it
// never merges, and CloseTodo discards it when the user leaves the list.
//
// # Observing changes
//
// Subscribe returns a coalescing channel. The UI waits on it and re-reads a
// Snapshot, which is a deep copy:
//
//	changes, cancel := store.Subscribe()
//	defer cancel()
//	for range changes {
//		render(store.Snapshot())
//	}
//
// # Concurrency
//
// Transitions take a write lock and Snapshot takes a read lock. The lock is
// never held across network I/O. Two goroutines applying transitions are
// serialized; ordering between them is whatever order they acquire the lock.
package state
