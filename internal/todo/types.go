package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID identifies a todo list on the remote API. Backends disagree on whether
// ids are numbers or strings, so both decode into the same value. The zero
// value marks a draft that has not been created yet.
type ID string

// IsZero reports whether the id has not been assigned by the server.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts "12", 12 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Todo is a named list of items.
type Todo struct {
	ID    ID     `json:"id,omitempty"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// IsDraft reports whether the todo is still waiting for a server id.
func (t Todo) IsDraft() bool {
	return t.ID.IsZero()
}

// Clone returns a copy that shares no item storage with t.
func (t Todo) Clone() Todo {
	dup := t
	dup.Items = CloneItems(t.Items)
	return dup
}

// Item is a single task inside a todo list. Date holds the deadline as an
// RFC 3339 timestamp.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Finished    bool   `json:"finished"`
}

// UnmarshalJSON accepts numeric item ids as well as strings, like ID.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item(raw.plain)
	i.ID = string(raw.ID)
	return nil
}

// Deadline parses Date. ok is false when the date is missing or malformed.
func (i Item) Deadline() (deadline time.Time, ok bool) {
	raw := strings.TrimSpace(i.Date)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewItemID returns a fresh client-generated item id.
func NewItemID() string {
	return uuid.NewString()
}

// NewItemDraft returns an unsaved item with a generated id and a deadline one
// day after now.
func NewItemDraft(now time.Time) Item {
	return Item{
		ID:   NewItemID(),
		Date: FormatDeadline(now.Add(24 * time.Hour)),
	}
}

// FormatDeadline renders t in the wire format used for Item.Date.
func FormatDeadline(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CloneItems copies items into a new slice. nil stays nil.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

// CloneTodos deep-copies todos including their item slices.
func CloneTodos(todos []Todo) []Todo {
	if todos == nil {
		return nil
	}
	dup := make([]Todo, len(todos))
	for i, t := range todos {
		dup[i] = t.Clone()
	}
	return dup
}

// Filter selects a subset of items by state.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterFinished Filter = "finished"
	FilterMissed   Filter = "missed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterFinished, FilterMissed}

// ParseFilter maps a user supplied value onto a Filter. Anything other than
// active, finished or missed yields FilterAll.
func ParseFilter(raw string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterActive:
		return FilterActive
	case FilterFinished:
		return FilterFinished
	case FilterMissed:
		return FilterMissed
	default:
		return FilterAll
	}
}

// Next returns the filter after f in display order, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// FilterCounts summarises items by state. All == Active + Finished + Missed.
type FilterCounts struct {
	All      int `json:"all"`
	Active   int `json:"active"`
	Finished int `json:"finished"`
	Missed   int `json:"missed"`
}

// Get returns the count for f.
func (c FilterCounts) Get(f Filter) int {
	switch f {
	case FilterActive:
		return c.Active
	case FilterFinished:
		return c.Finished
	case FilterMissed:
		return c.Missed
	default:
		return c.All
	}
}
