// Package fanout implements the core's async fan-out primitive (spec.md
// §5/§6): spawn a fixed set of tasks concurrently, join their results back
// in source order, and honor a single shared cancellation token across all
// of them.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of fan-out work. It receives the shared context so it
// can observe cancellation/deadline and must return promptly once ctx is
// done.
type Task[T any] func(ctx context.Context) (T, error)

// Result pairs a task's output with the error from its own source, by
// position. Resolver callers use Err to implement per-source error
// records (spec.md §4.6: "must not ever silently swallow errors ...
// returns partial results with an error-per-source record").
type Result[T any] struct {
	Value T
	Err   error
}

// Spawn runs tasks concurrently against ctx and returns one Result per
// task, in the same order as tasks. It always returns len(tasks) results,
// even when some tasks fail or ctx is cancelled/times out — a failed or
// cancelled task's Result carries its error in Err rather than aborting
// the whole batch, so a resolver can report partial results per spec.md
// §4.6.
//
// Spawn's own error return reflects only ctx's cancellation/deadline state
// after every task has finished (nil if ctx was never cancelled); a caller
// that sees a non-nil error must discard results rather than use them, per
// spec.md §5's cancellation rule.
func Spawn[T any](ctx context.Context, tasks []Task[T]) ([]Result[T], error) {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			v, err := task(gctx)
			results[i] = Result[T]{Value: v, Err: err}
			return nil // never abort the group; errors are carried per-slot
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}
