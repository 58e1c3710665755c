// Package todo defines the todo list domain: lists, items, filter states and
// the pure functions that derive views from them.
//
// Nothing in this package performs I/O or reads the clock. Functions that
// depend on the current time take it as an argument so that a batch of items
// is always classified against a single instant:
//
//	now := time.Now()
//	counts := todo.CountFilters(items, now)
//	visible := todo.FilterItems(items, filter, now)
//
// Every item is in exactly one of the active, finished and missed states.
// Finished wins over the deadline, so a finished item is never missed.
//
// Drafts are validated against embedded JSON schemas before they leave the
// client; failures come back as *ValidationError naming the offending field.
package todo
