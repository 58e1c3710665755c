package actions

import "fmt"

// Kind names a user-visible write.
type Kind int

const (
	KindAdd Kind = iota
	KindEdit
	KindDelete
	KindImport
)

// Level is the severity of a notice.
type Level int

const (
	LevelPending Level = iota
	LevelSuccess
	LevelError
)

// Notice is the transient message shown for a write.
type Notice struct {
	Level  Level
	Title  string
	Name   string // entity title, quoted in the UI
	Detail string // error text, empty unless Level is LevelError
}

func (n Notice) String() string {
	s := n.Title
	if n.Name != "" {
		s += fmt.Sprintf(" %q", n.Name)
	}
	if n.Detail != "" {
		s += ": " + n.Detail
	}
	return s
}

type noticeText struct{ pending, success, failure string }

var noticeTexts = map[Kind]noticeText{
	KindAdd:    {"Adding", "Successfully added", "Failed to add"},
	KindDelete: {"Removing", "Successfully removed", "Failed to remove"},
	KindEdit:   {"Saving", "Successfully saved", "Failed to edit"},
	KindImport: {"Importing demo data...", "Successfully imported", "Something went wrong"},
}

// PendingNotice is shown while the write is in flight.
func PendingNotice(kind Kind, name string) Notice {
	return Notice{Level: LevelPending, Title: noticeTexts[kind].pending, Name: importName(kind, name)}
}

func resultNotice(kind Kind, name string, err error) Notice {
	text := noticeTexts[kind]
	if err != nil {
		return Notice{Level: LevelError, Title: text.failure, Name: importName(kind, name), Detail: err.Error()}
	}
	return Notice{Level: LevelSuccess, Title: text.success, Name: importName(kind, name)}
}

func importName(kind Kind, name string) string {
	if kind == KindImport {
		return ""
	}
	return name
}
