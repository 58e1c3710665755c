package todo

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports user input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Deadlines outside this window are rejected.
var (
	MinDeadline = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDeadline = time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	schemaBase    = "https://todoboard.local/schema/"
	itemSchemaURL = schemaBase + "item.json"
	todoSchemaURL = schemaBase + "todo.json"
)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	itemSchema  *jsonschema.Schema
	todoSchema  *jsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	for _, name := range []string{"item.json", "todo.json"} {
		data, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			schemasErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(schemaBase+name, bytes.NewReader(data)); err != nil {
			schemasErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}
	if itemSchema, schemasErr = compiler.Compile(itemSchemaURL); schemasErr != nil {
		return
	}
	todoSchema, schemasErr = compiler.Compile(todoSchemaURL)
}

// ValidateTodo checks a todo before it is created or renamed, including every
// nested item.
func ValidateTodo(t Todo) error {
	if t.Items == nil {
		t.Items = []Item{}
	}
	if err := validateWith(func() *jsonschema.Schema { return todoSchema }, t); err != nil {
		return err
	}
	for i, item := range t.Items {
		if err := checkDeadlineRange(item); err != nil {
			err.Field = fmt.Sprintf("items.%d.%s", i, err.Field)
			return err
		}
	}
	return nil
}

// ValidateItem checks an item draft before it is saved.
func ValidateItem(item Item) error {
	if err := validateWith(func() *jsonschema.Schema { return itemSchema }, item); err != nil {
		return err
	}
	if err := checkDeadlineRange(item); err != nil {
		return err
	}
	return nil
}

func validateWith(schema func() *jsonschema.Schema, v any) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return fmt.Errorf("compile schema: %w", schemasErr)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal draft: %w", err)
	}

	if err := schema().Validate(doc); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	field := pointerToField(leaf.InstanceLocation)
	if field == "" && strings.Contains(leaf.Message, "missing properties") {
		field = missingProperty(leaf.Message)
	}
	return &ValidationError{Field: field, Message: friendlyMessage(field, leaf.Message)}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func pointerToField(pointer string) string {
	trimmed := strings.Trim(pointer, "/")
	if trimmed == "" {
		return ""
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

// missingProperty extracts the first name from messages like
// "missing properties: 'title', 'date'".
func missingProperty(msg string) string {
	_, rest, ok := strings.Cut(msg, ":")
	if !ok {
		return ""
	}
	first, _, _ := strings.Cut(rest, ",")
	return strings.Trim(strings.TrimSpace(first), "'\"")
}

func friendlyMessage(field, fallback string) string {
	switch lastSegment(field) {
	case "title":
		return "Title is required"
	case "date":
		return "Deadline date is required"
	default:
		return fallback
	}
}

func lastSegment(field string) string {
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

func checkDeadlineRange(item Item) *ValidationError {
	deadline, ok := item.Deadline()
	if !ok {
		return &ValidationError{Field: "date", Message: "Deadline date is required"}
	}
	if deadline.Before(MinDeadline) {
		return &ValidationError{Field: "date", Message: "Select date after " + MinDeadline.Format("02.01.2006 15:04")}
	}
	if !deadline.Before(MaxDeadline) {
		return &ValidationError{Field: "date", Message: "Select date before " + MaxDeadline.Format("02.01.2006 15:04")}
	}
	return nil
}
