package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/todoboard/internal/todo"
)

const deadlineInputLayout = "2006-01-02 15:04"

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// formatDeadline renders an item deadline in local time the way the list
// shows it, e.g. "12.05.2024 14:00".
func formatDeadline(item todo.Item) string {
	d, ok := item.Deadline()
	if !ok {
		return "no deadline"
	}
	return d.Local().Format("02.01.2006 15:04")
}

// relative describes d relative to now: "in 3h", "2d ago", "now".
func relative(d, now time.Time) string {
	diff := d.Sub(now)
	suffix := ""
	prefix := "in "
	if diff < 0 {
		diff = -diff
		prefix = ""
		suffix = " ago"
	}
	var s string
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		s = fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 48*time.Hour:
		s = fmt.Sprintf("%dh", int(diff.Hours()))
	default:
		s = fmt.Sprintf("%dd", int(diff.Hours()/24))
	}
	return prefix + s + suffix
}

// deadlineInput converts a stored deadline to the form's input format.
func deadlineInput(item todo.Item) string {
	d, ok := item.Deadline()
	if !ok {
		return item.Date
	}
	return d.Local().Format(deadlineInputLayout)
}

// parseDeadlineInput accepts "2006-01-02 15:04", a bare date or RFC 3339 in
// local time. Text that does not parse is passed through so validation can
// reject it with a field-specific message.
func parseDeadlineInput(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{deadlineInputLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return todo.FormatDeadline(t)
		}
	}
	return raw
}

// progressBar renders a fixed-width bar for pct in [0,100].
func progressBar(pct, width int) string {
	if width <= 0 {
		return ""
	}
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// plural returns "1 list" or "3 lists".
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
