package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/todoboard/internal/todo"
)

// TodoService is the remote persistence for todo lists. Items have no
// endpoint of their own; they are written by updating the parent todo.
type TodoService interface {
	ListTodos(ctx context.Context) ([]todo.Todo, error)
	GetTodo(ctx context.Context, id todo.ID) (todo.Todo, error)
	CreateTodo(ctx context.Context, t todo.Todo) (todo.Todo, error)
	UpdateTodo(ctx context.Context, t todo.Todo) (todo.Todo, error)
	DeleteTodo(ctx context.Context, id todo.ID) error
}

// Ensure Client implements TodoService at compile time.
var _ TodoService = (*Client)(nil)

// Client talks to the todo REST API.
type Client struct {
	baseURL   *url.URL
	resource  string
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

const (
	defaultBaseURL   = "http://127.0.0.1:3000"
	defaultResource  = "todos"
	defaultUserAgent = "todoboard/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 512
)

// Options configure a Client.
type Options struct {
	BaseURL  string        // e.g. https://example.mockapi.io/demo-api
	Resource string        // collection path below BaseURL; defaults to "todos"
	Timeout  time.Duration // per request; zero uses 10s
	Logger   *log.Logger   // nil discards
}

// NewClient builds a Client for the given API location.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	resource := strings.Trim(strings.TrimSpace(opts.Resource), "/")
	if resource == "" {
		resource = defaultResource
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL:  base,
		resource: resource,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// ListTodos fetches every todo list.
func (c *Client) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []todo.Todo
	if err := c.do(ctx, http.MethodGet, c.collectionPath(), nil, &payload); err != nil {
		return nil, err
	}
	for i := range payload {
		normalize(&payload[i])
	}
	return payload, nil
}

// GetTodo fetches one todo list with its items.
func (c *Client) GetTodo(ctx context.Context, id todo.ID) (todo.Todo, error) {
	if c == nil {
		return todo.Todo{}, fmt.Errorf("client is nil")
	}
	if id.IsZero() {
		return todo.Todo{}, fmt.Errorf("todo id required")
	}
	var payload todo.Todo
	if err := c.do(ctx, http.MethodGet, c.memberPath(id), nil, &payload); err != nil {
		return todo.Todo{}, err
	}
	normalize(&payload)
	return payload, nil
}

// CreateTodo posts a draft and returns it with the server-assigned id.
func (c *Client) CreateTodo(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if c == nil {
		return todo.Todo{}, fmt.Errorf("client is nil")
	}
	draft := t.Clone()
	draft.ID = ""
	if draft.Items == nil {
		draft.Items = []todo.Item{}
	}
	var created todo.Todo
	if err := c.do(ctx, http.MethodPost, c.collectionPath(), draft, &created); err != nil {
		return todo.Todo{}, err
	}
	if created.IsDraft() {
		return todo.Todo{}, &ServerError{Op: "POST " + c.collectionPath(), Message: "response carried no id"}
	}
	normalize(&created)
	return created, nil
}

// UpdateTodo replaces a todo, including its full item list.
func (c *Client) UpdateTodo(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if c == nil {
		return todo.Todo{}, fmt.Errorf("client is nil")
	}
	if t.ID.IsZero() {
		return todo.Todo{}, fmt.Errorf("todo id required")
	}
	body := t.Clone()
	if body.Items == nil {
		body.Items = []todo.Item{}
	}
	var updated todo.Todo
	if err := c.do(ctx, http.MethodPut, c.memberPath(t.ID), body, &updated); err != nil {
		return todo.Todo{}, err
	}
	if updated.IsDraft() {
		// Some backends answer 204 or echo nothing useful.
		updated = body
	}
	normalize(&updated)
	return updated, nil
}

// DeleteTodo removes a todo list.
func (c *Client) DeleteTodo(ctx context.Context, id todo.ID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if id.IsZero() {
		return fmt.Errorf("todo id required")
	}
	return c.do(ctx, http.MethodDelete, c.memberPath(id), nil, nil)
}

func (c *Client) collectionPath() string {
	return "/" + c.resource
}

func (c *Client) memberPath(id todo.ID) string {
	return "/" + c.resource + "/" + id.String()
}

func (c *Client) do(ctx context.Context, method, rel string, body, dest any) error {
	op := method + " " + rel
	reqURL := *c.baseURL
	reqURL.Path = path.Join(c.baseURL.Path, rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "err", err)
		return &NetworkError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("request", "op", op, "status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	msg := strings.TrimSpace(string(data))
	msg = strings.Trim(msg, "\"")
	return msg
}

func normalize(t *todo.Todo) {
	if t.Items == nil {
		t.Items = []todo.Item{}
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
