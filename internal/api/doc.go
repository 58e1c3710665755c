// Package api is the HTTP client for the todo REST backend.
//
// The backend is a plain CRUD collection:
//
//	GET    /todos        list
//	GET    /todos/{id}   read one, items nested
//	POST   /todos        create, server assigns the id
//	PUT    /todos/{id}   replace, including the whole items array
//	DELETE /todos/{id}   remove
//
// Items have no endpoint. Every item change is sent as a PUT of the parent
// todo carrying its complete item list.
//
// Failures are typed. A request that never completes is a *NetworkError; a
// non-2xx status or an undecodable body is a *ServerError. Nothing is retried
// here; callers decide how to recover.
package api
