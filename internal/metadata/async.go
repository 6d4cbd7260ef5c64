package metadata

import (
	"context"

	"github.com/sadopc/sqlscope/internal/schema"
)

// WrapAsync adapts any Source into an AsyncSource by running each call on
// its own goroutine and delivering the result over a buffered channel of
// size 1, so a cancelled/abandoned caller never leaks the goroutine.
func WrapAsync(s Source) AsyncSource {
	return asyncWrapper{s}
}

type asyncWrapper struct{ s Source }

func (w asyncWrapper) ListDatabasesAsync(ctx context.Context) <-chan Result[[]schema.Database] {
	ch := make(chan Result[[]schema.Database], 1)
	go func() {
		v, err := w.s.ListDatabases(ctx)
		ch <- Result[[]schema.Database]{Value: v, Err: err}
	}()
	return ch
}

func (w asyncWrapper) ListSchemasAsync(ctx context.Context, db string) <-chan Result[[]schema.Schema] {
	ch := make(chan Result[[]schema.Schema], 1)
	go func() {
		v, err := w.s.ListSchemas(ctx, db)
		ch <- Result[[]schema.Schema]{Value: v, Err: err}
	}()
	return ch
}

func (w asyncWrapper) ListTablesAsync(ctx context.Context, db, schemaName string) <-chan Result[[]schema.Table] {
	ch := make(chan Result[[]schema.Table], 1)
	go func() {
		v, err := w.s.ListTables(ctx, db, schemaName)
		ch <- Result[[]schema.Table]{Value: v, Err: err}
	}()
	return ch
}

func (w asyncWrapper) GetColumnsAsync(ctx context.Context, obj schema.ObjectRef) <-chan Result[[]schema.Column] {
	ch := make(chan Result[[]schema.Column], 1)
	go func() {
		v, err := w.s.GetColumns(ctx, obj)
		ch <- Result[[]schema.Column]{Value: v, Err: err}
	}()
	return ch
}

func (w asyncWrapper) GetConstraintsAsync(ctx context.Context, obj schema.ObjectRef) <-chan Result[[]schema.ForeignKey] {
	ch := make(chan Result[[]schema.ForeignKey], 1)
	go func() {
		v, err := w.s.GetConstraints(ctx, obj)
		ch <- Result[[]schema.ForeignKey]{Value: v, Err: err}
	}()
	return ch
}
