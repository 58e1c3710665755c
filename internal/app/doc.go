// Package app is the composition root of todoboard.
//
// Run loads config and preferences, opens the log file, builds the API
// client, query cache, store and action orchestrator, starts the
// revalidator and hands control to the UI until the user quits.
//
// The revalidator listens for invalidated queries. A write that fails marks
// the query behind the affected view stale; if that view is still on screen
// the revalidator refetches it at once, which replaces the optimistic change
// with the server's state. Queries for views that are not shown stay stale
// and are fetched again when the view is opened.
package app
