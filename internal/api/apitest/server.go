// Package apitest provides an in-memory stand-in for the todo REST API.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/five82/todoboard/internal/todo"
)

// Request records one call received by the server.
type Request struct {
	Method string
	Path   string
	Body   todo.Todo
}

// Server is a fake backend serving /todos and /todos/{id}. It is safe for
// concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	todos    []todo.Todo
	nextID   int
	fail     map[string]int // "METHOD" or "METHOD /path" -> status
	requests []Request
}

// New starts a server seeded with todos. Todos without an id get one.
func New(seed ...todo.Todo) *Server {
	s := &Server{fail: make(map[string]int), nextID: 1}
	for _, t := range seed {
		if t.IsDraft() {
			t.ID = s.allocID()
		} else if n, err := strconv.Atoi(t.ID.String()); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
		if t.Items == nil {
			t.Items = []todo.Item{}
		}
		s.todos = append(s.todos, t.Clone())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", s.handleList)
	mux.HandleFunc("POST /todos", s.handleCreate)
	mux.HandleFunc("GET /todos/{id}", s.handleGet)
	mux.HandleFunc("PUT /todos/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /todos/{id}", s.handleDelete)
	s.Server = httptest.NewServer(s.intercept(mux))
	return s
}

// Fail makes every request matching key answer with status until Recover is
// called. key is a method ("DELETE") or a method and path ("PUT /todos/1").
func (s *Server) Fail(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[key] = status
}

// Recover clears every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.fail)
}

// Todos returns a copy of the persisted todos.
func (s *Server) Todos() []todo.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.CloneTodos(s.todos)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// CountRequests counts received requests with the given method.
func (s *Server) CountRequests(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body todo.Todo
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		status, failing := s.fail[r.Method+" "+r.URL.Path]
		if !failing {
			status, failing = s.fail[r.Method]
		}
		s.mu.Unlock()

		if failing {
			http.Error(w, "injected failure", status)
			return
		}
		r = r.WithContext(withBody(r.Context(), body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Todos())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.indexOf(todo.ID(r.PathValue("id")))
	var t todo.Todo
	if idx >= 0 {
		t = s.todos[idx].Clone()
	}
	s.mu.Unlock()
	if idx < 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	t := bodyFrom(r.Context())
	if strings.TrimSpace(t.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}
	if t.Items == nil {
		t.Items = []todo.Item{}
	}
	s.mu.Lock()
	t.ID = s.allocID()
	s.todos = append(s.todos, t.Clone())
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := todo.ID(r.PathValue("id"))
	t := bodyFrom(r.Context())
	t.ID = id
	if t.Items == nil {
		t.Items = []todo.Item{}
	}
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx >= 0 {
		s.todos[idx] = t.Clone()
	}
	s.mu.Unlock()
	if idx < 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := todo.ID(r.PathValue("id"))
	s.mu.Lock()
	idx := s.indexOf(id)
	var removed todo.Todo
	if idx >= 0 {
		removed = s.todos[idx]
		s.todos = slices.Delete(s.todos, idx, idx+1)
	}
	s.mu.Unlock()
	if idx < 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) indexOf(id todo.ID) int {
	return slices.IndexFunc(s.todos, func(t todo.Todo) bool { return t.ID == id })
}

func (s *Server) allocID() todo.ID {
	id := todo.ID(strconv.Itoa(s.nextID))
	s.nextID++
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
