// Package ui renders the todoboard terminal interface with Bubble Tea.
//
// # Screens
//
// The dashboard lists every todo list as a card with its progress. From there
// the user searches, creates, renames and deletes lists, imports demo data and
// opens a list. The detail screen shows the open list's items behind filter
// tabs (all, active, finished, missed) and edits them in place. The activity
// screen tails the log file.
//
// # Reads and writes
//
// Opening a screen starts a read; keys are ignored until it finishes, and a
// failed read replaces the screen with an error view until the user retries or
// goes back. Writes never block: the store changes at once, a pending toast is
// shown, and the toast turns into a success or error notice when the request
// returns. A failed write is rolled back by the revalidator, not by the UI.
//
// # Overlays
//
// Forms, confirmations and the help overlay take all input while open. A form
// rejected by validation stays open with the offending field focused.
package ui
