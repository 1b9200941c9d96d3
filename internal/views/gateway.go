package views

import (
	"context"

	"dashkpis/internal/api"
	"dashkpis/internal/crud"
)

// gateway adapts a set of backend calls to crud.Gateway.
type gateway[T any] struct {
	list   func(ctx context.Context) ([]T, error)
	create func(ctx context.Context, v T) (T, error)
	update func(ctx context.Context, id int64, v T) (T, error)
	remove func(ctx context.Context, id int64) error
}

func (g gateway[T]) List(ctx context.Context) ([]T, error) { return g.list(ctx) }
func (g gateway[T]) Create(ctx context.Context, v T) (T, error) { return g.create(ctx, v) }
func (g gateway[T]) Update(ctx context.Context, id int64, v T) (T, error) { return g.update(ctx, id, v) }
func (g gateway[T]) Delete(ctx context.Context, id int64) error { return g.remove(ctx, id) }

var _ crud.Gateway[int] = gateway[int]{}

// isGone is how every view recognises a stale reference.
func isGone(err error) bool { return api.IsNotFound(err) }
