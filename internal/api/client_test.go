package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/todoboard/internal/api/apitest"
	"github.com/five82/todoboard/internal/todo"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/demo-api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/demo-api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a url without host")
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: baseURL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_CRUDRoundTrip(t *testing.T) {
	t.Parallel()

	srv := apitest.New(todo.Todo{ID: "1", Title: "Groceries", Items: []todo.Item{{ID: "a", Title: "Milk"}}})
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	todos, err := c.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos returned error: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != "1" || len(todos[0].Items) != 1 {
		t.Fatalf("ListTodos = %#v", todos)
	}

	created, err := c.CreateTodo(ctx, todo.Todo{Title: "Work"})
	if err != nil {
		t.Fatalf("CreateTodo returned error: %v", err)
	}
	if created.IsDraft() || created.Title != "Work" || created.Items == nil {
		t.Fatalf("CreateTodo = %#v, want id assigned and empty items", created)
	}

	created.Items = []todo.Item{{ID: "r", Title: "Report"}}
	if _, err := c.UpdateTodo(ctx, created); err != nil {
		t.Fatalf("UpdateTodo returned error: %v", err)
	}
	got, err := c.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo returned error: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "r" {
		t.Fatalf("GetTodo items = %#v, want the updated list", got.Items)
	}

	if err := c.DeleteTodo(ctx, "1"); err != nil {
		t.Fatalf("DeleteTodo returned error: %v", err)
	}
	if left := srv.Todos(); len(left) != 1 || left[0].ID != created.ID {
		t.Fatalf("server todos after delete = %#v", left)
	}
}

func TestClient_SendsHeadersAndResourcePath(t *testing.T) {
	t.Parallel()

	var gotPath, gotUA, gotCT string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 9, "title": "x"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL + "/demo-api/", Resource: "/test/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	created, err := c.CreateTodo(context.Background(), todo.Todo{Title: "x"})
	if err != nil {
		t.Fatalf("CreateTodo returned error: %v", err)
	}
	if created.ID != "9" {
		t.Fatalf("numeric id decoded as %q, want 9", created.ID)
	}
	if gotPath != "/demo-api/test" {
		t.Fatalf("path = %q, want /demo-api/test", gotPath)
	}
	if !strings.HasPrefix(gotUA, "todoboard/") {
		t.Fatalf("User-Agent = %q, want todoboard/*", gotUA)
	}
	if gotCT != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotCT)
	}
}

func TestClient_ServerAndDecodeErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/todos":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/todos/1":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	c := newTestClient(t, server.URL)

	_, err := c.ListTodos(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") || !IsServer(err) {
		t.Fatalf("ListTodos error = %v, want decode ServerError", err)
	}

	_, err = c.GetTodo(context.Background(), "1")
	var se *ServerError
	if !errors.As(err, &se) || se.StatusCode != 500 || se.Message != "nope" {
		t.Fatalf("GetTodo error = %#v, want status 500 ServerError", err)
	}

	_, err = c.GetTodo(context.Background(), "2")
	if !IsNotFound(err) {
		t.Fatalf("GetTodo missing = %v, want not found", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	err := c.DeleteTodo(context.Background(), "1")
	if !IsNetwork(err) {
		t.Fatalf("DeleteTodo error = %v, want NetworkError", err)
	}
	if IsServer(err) {
		t.Fatalf("network failure classified as server error")
	}
}

func TestClient_RequiresIDs(t *testing.T) {
	c := newTestClient(t, "127.0.0.1:1")
	if _, err := c.GetTodo(context.Background(), ""); err == nil {
		t.Fatalf("GetTodo accepted empty id")
	}
	if _, err := c.UpdateTodo(context.Background(), todo.Todo{Title: "x"}); err == nil {
		t.Fatalf("UpdateTodo accepted draft")
	}
	if err := c.DeleteTodo(context.Background(), ""); err == nil {
		t.Fatalf("DeleteTodo accepted empty id")
	}
}

func TestClient_CreateRejectsResponseWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"x","items":[]}`))
	}))
	t.Cleanup(server.Close)
	c := newTestClient(t, server.URL)

	if _, err := c.CreateTodo(context.Background(), todo.Todo{Title: "x"}); !IsServer(err) {
		t.Fatalf("CreateTodo error = %v, want ServerError", err)
	}
}

func TestClient_InjectedFailureFromFake(t *testing.T) {
	srv := apitest.New(todo.Todo{ID: "1", Title: "a"})
	t.Cleanup(srv.Close)
	srv.Fail("PUT /todos/1", http.StatusServiceUnavailable)
	c := newTestClient(t, srv.URL)

	_, err := c.UpdateTodo(context.Background(), todo.Todo{ID: "1", Title: "b"})
	var se *ServerError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("UpdateTodo error = %v, want 503", err)
	}
	if srv.Todos()[0].Title != "a" {
		t.Fatalf("failed update should not persist")
	}
}
