package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/todo"
)

type formKind int

const (
	formList formKind = iota
	formItem
)

// Field order of item forms.
const (
	fieldTitle = iota
	fieldDescription
	fieldDate
)

// form is the modal used to create or edit a list or an item.
type form struct {
	kind    formKind
	heading string
	todoID  todo.ID   // list forms: empty creates a new list
	item    todo.Item // item forms: the item being edited or drafted
	isNew   bool
	inputs  []textinput.Model
	labels  []string
	focus   int
	err     string
}

// confirmation asks before a destructive write.
type confirmation struct {
	prompt string
	action func() (*actions.Write, error)
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

func newListForm(heading string, id todo.ID, title string) *form {
	return &form{
		kind:    formList,
		heading: heading,
		todoID:  id,
		inputs:  []textinput.Model{newInput("Title", title, 120)},
		labels:  []string{"Title"},
	}
}

func newItemForm(heading string, item todo.Item, isNew bool) *form {
	return &form{
		kind:    formItem,
		heading: heading,
		item:    item,
		isNew:   isNew,
		inputs: []textinput.Model{
			newInput("What needs doing?", item.Title, 120),
			newInput("Optional details", item.Description, 500),
			newInput(deadlineInputLayout, deadlineInput(item), 25),
		},
		labels: []string{"Title", "Description", "Deadline"},
	}
}

// focusCmd focuses the current field and blurs the rest.
func (f *form) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

// fieldIndex maps a validation field name to the input showing it.
func (f *form) fieldIndex(field string) int {
	if f.kind == formList {
		return 0
	}
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	switch field {
	case "description":
		return fieldDescription
	case "date":
		return fieldDate
	default:
		return fieldTitle
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if f.kind == formItem && f.isNew {
			m.orch.CancelNewItem()
			m.refresh()
		}
		m.form = nil
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if msg.String() == "enter" && f.focus < len(f.inputs)-1 {
			f.focus++
			return m, f.focusCmd()
		}
		return m.submitForm()

	case key.Matches(msg, m.keys.NextField):
		f.focus = (f.focus + 1) % len(f.inputs)
		return m, f.focusCmd()

	case key.Matches(msg, m.keys.PrevField):
		f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
		return m, f.focusCmd()
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

// submitForm runs the form's action. A validation failure keeps the form
// open with the offending field focused.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	var (
		w   *actions.Write
		err error
	)
	switch {
	case f.kind == formList && f.todoID.IsZero():
		w, err = m.orch.AddTodo(f.value(0))
	case f.kind == formList:
		w, err = m.orch.RenameTodo(f.todoID, f.value(0))
	default:
		item := f.item
		item.Title = f.value(fieldTitle)
		item.Description = f.value(fieldDescription)
		item.Date = parseDeadlineInput(f.value(fieldDate))
		if f.isNew {
			w, err = m.orch.SaveNewItem(item)
		} else {
			w, err = m.orch.EditItem(item)
		}
	}

	if err != nil {
		var ve *todo.ValidationError
		if errors.As(err, &ve) {
			f.err = ve.Message
			f.focus = f.fieldIndex(ve.Field)
			return m, f.focusCmd()
		}
		f.err = err.Error()
		return m, nil
	}

	m.form = nil
	cmd := m.runWrite(w)
	return m, cmd
}

func (m Model) renderForm() string {
	f := m.form
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Title.Render(f.heading))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := styles.MutedText
		if i == f.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Render(f.labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n\n")
	}
	b.WriteString(m.help.ShortHelpView(formHelp{m.keys}.ShortHelp()))

	return m.place(styles.Modal.Width(min(60, max(m.width-4, 30))).Render(b.String()))
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	body := styles.Text.Render(m.confirm.prompt) + "\n\n" +
		styles.AccentText.Render("y") + styles.MutedText.Render(" confirm  ") +
		styles.AccentText.Render("n") + styles.MutedText.Render(" cancel")
	return m.place(styles.Modal.Render(body))
}

// place centers content on the screen.
func (m Model) place(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
	)
}
