package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Field is a key/value pair beyond time, level and msg.
type Field struct {
	Key   string
	Value string
}

// Entry is one parsed log line.
type Entry struct {
	Time   time.Time // zero when the line carried no parseable time
	Level  string    // lower case; empty when absent
	Msg    string
	Fields []Field
	Raw    string
}

// Field returns the value of key and whether it was present.
func (e Entry) Field(key string) (string, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Parse decodes a logfmt line. Lines that are not logfmt come back with the
// whole text as Msg.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	dec := logfmt.NewDecoder(strings.NewReader(line))
	if !dec.ScanRecord() {
		entry.Msg = line
		return entry
	}
	sawMsg := false
	for dec.ScanKeyval() {
		key, value := string(dec.Key()), string(dec.Value())
		switch key {
		case "time", "ts":
			if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
				entry.Time = ts
			}
		case "level", "lvl":
			entry.Level = strings.ToLower(value)
		case "msg", "message":
			entry.Msg = value
			sawMsg = true
		default:
			entry.Fields = append(entry.Fields, Field{Key: key, Value: value})
		}
	}
	if dec.Err() != nil || (!sawMsg && entry.Level == "") {
		return Entry{Raw: line, Msg: line}
	}
	return entry
}

// ReadEntries reads and parses the last maxLines lines of path.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Format renders an entry back into a compact single line, keeping fields in
// logfmt so values with spaces stay quoted.
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(strings.ToUpper(e.Level))
		b.WriteByte(' ')
	}
	b.WriteString(e.Msg)
	if len(e.Fields) > 0 {
		var buf bytes.Buffer
		enc := logfmt.NewEncoder(&buf)
		for _, f := range e.Fields {
			_ = enc.EncodeKeyval(f.Key, f.Value)
		}
		b.WriteByte(' ')
		b.WriteString(buf.String())
	}
	return b.String()
}
