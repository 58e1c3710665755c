// Package actions turns user intents into store changes and remote writes.
//
// Every write has two halves. Calling an operation such as DeleteTodo applies
// the change to the store immediately and returns a Write; Write.Run then
// sends the request. When the request fails Run invalidates the query that
// backs the affected view, so the next fetch replaces the optimistic state
// with what the server holds. Writes to the same list are serialized and a
// write overtaken by a newer one is skipped.
package actions
