package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v", got, err)
	}
}

func TestParse(t *testing.T) {
	line := `time=2024-05-10T12:00:00.000Z level=warn msg="write failed" action=delete name="Weekly shop" invalidated=todos`
	e := Parse(line)
	if e.Level != "warn" || e.Msg != "write failed" {
		t.Fatalf("entry = %+v", e)
	}
	if !e.Time.Equal(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("time = %v", e.Time)
	}
	if v, ok := e.Field("name"); !ok || v != "Weekly shop" {
		t.Fatalf("name field = %q, %v", v, ok)
	}
	if len(e.Fields) != 3 {
		t.Fatalf("fields = %+v", e.Fields)
	}
}

func TestParse_NonLogfmtKeepsRaw(t *testing.T) {
	tests := []string{
		"plain text without pairs",
		`unterminated="quote`,
	}
	for _, line := range tests {
		e := Parse(line)
		if e.Msg != line || e.Level != "" || len(e.Fields) != 0 {
			t.Fatalf("Parse(%q) = %+v", line, e)
		}
	}
}

func TestReadEntries_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todoboard.log")
	body := "level=info msg=started\n\nlevel=error msg=\"load todos failed\" err=\"connection refused\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := ReadEntries(path, 10)
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	if len(entries) != 2 || entries[1].Level != "error" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestFormat(t *testing.T) {
	e := Entry{Level: "info", Msg: "write persisted", Fields: []Field{{Key: "name", Value: "Weekly shop"}}}
	got := Format(e)
	want := `INFO write persisted name="Weekly shop"`
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}
