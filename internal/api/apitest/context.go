package apitest

import (
	"context"

	"github.com/five82/todoboard/internal/todo"
)

type bodyKey struct{}

func withBody(ctx context.Context, t todo.Todo) context.Context {
	return context.WithValue(ctx, bodyKey{}, t)
}

func bodyFrom(ctx context.Context) todo.Todo {
	t, _ := ctx.Value(bodyKey{}).(todo.Todo)
	return t
}
