package todo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIDUnmarshal_NumbersAndStrings(t *testing.T) {
	var todos []Todo
	payload := `[{"id":"7","title":"a","items":[]},{"id":12,"title":"b","items":[]},{"id":null,"title":"c","items":[]}]`
	if err := json.Unmarshal([]byte(payload), &todos); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if todos[0].ID != "7" || todos[1].ID != "12" || !todos[2].IsDraft() {
		t.Fatalf("ids = %q %q %q", todos[0].ID, todos[1].ID, todos[2].ID)
	}
}

func TestTodoMarshal_DraftOmitsID(t *testing.T) {
	data, err := json.Marshal(Todo{Title: "new", Items: []Item{}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Fatalf("draft JSON %s should omit id", data)
	}
}

func TestCloneTodos_Independent(t *testing.T) {
	orig := []Todo{{ID: "1", Items: []Item{{ID: "a", Title: "x"}}}}
	dup := CloneTodos(orig)
	dup[0].Items[0].Title = "changed"
	if orig[0].Items[0].Title != "x" {
		t.Fatalf("CloneTodos shares item storage")
	}
}

func TestNewItemDraft(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	a := NewItemDraft(now)
	b := NewItemDraft(now)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("draft ids %q %q should be unique and non-empty", a.ID, b.ID)
	}
	deadline, ok := a.Deadline()
	if !ok || !deadline.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("deadline = %v (ok=%v), want %v", deadline, ok, now.Add(24*time.Hour))
	}
	if a.Finished {
		t.Fatalf("draft should be unfinished")
	}
}

func TestFormatDeadline(t *testing.T) {
	got := FormatDeadline(time.Date(2026, 5, 4, 3, 2, 1, 0, time.FixedZone("X", 3600)))
	if got != "2026-05-04T02:02:01.000Z" {
		t.Fatalf("FormatDeadline = %q", got)
	}
}

func TestItemUnmarshal_NumericID(t *testing.T) {
	var got Todo
	payload := `{"id":3,"title":"Home","items":[{"id":41,"title":"Paint","description":"hall","date":"2024-05-11T00:00:00.000Z","finished":true},{"id":"u-1","title":"Mop","description":"","date":"","finished":false}]}`
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []Item{
		{ID: "41", Title: "Paint", Description: "hall", Date: "2024-05-11T00:00:00.000Z", Finished: true},
		{ID: "u-1", Title: "Mop"},
	}
	if got.ID != "3" || len(got.Items) != 2 || got.Items[0] != want[0] || got.Items[1] != want[1] {
		t.Fatalf("decoded %+v", got)
	}
}
