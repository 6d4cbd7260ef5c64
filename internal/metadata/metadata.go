// Package metadata declares the capability-set the completion core
// requires of its external metadata collaborator (spec.md §4.6/§6). The
// core never talks to a database itself; internal/adapter's Connection
// type is the production implementation, and tests supply a fake.
package metadata

import (
	"context"

	"github.com/sadopc/sqlscope/internal/schema"
)

// Source is the synchronous metadata contract. Every call also has an
// async counterpart below (AsyncSource) for use inside fan-out tasks;
// Source itself is what the Resolver calls directly when it already holds
// a goroutine (e.g. from inside a fanout.Task).
type Source interface {
	ListDatabases(ctx context.Context) ([]schema.Database, error)
	ListSchemas(ctx context.Context, db string) ([]schema.Schema, error)
	ListTables(ctx context.Context, db, schemaName string) ([]schema.Table, error)
	ListViews(ctx context.Context, db, schemaName string) ([]schema.View, error)
	ListSynonyms(ctx context.Context, db, schemaName string) ([]schema.Synonym, error)
	ListProcedures(ctx context.Context, db, schemaName string) ([]schema.Procedure, error)
	ListFunctions(ctx context.Context, db, schemaName string) ([]schema.Function, error)

	GetColumns(ctx context.Context, obj schema.ObjectRef) ([]schema.Column, error)
	GetParameters(ctx context.Context, obj schema.ObjectRef) ([]schema.Parameter, error)
	GetConstraints(ctx context.Context, obj schema.ObjectRef) ([]schema.ForeignKey, error)

	// Features reports which object kinds the given dialect name exposes
	// (spec.md §4.6 "feature set per dialect").
	Features(dialect string) schema.Feature

	// UsageWeight exposes the out-of-core usage store (spec.md §4.6,
	// §6 "usage_weight(server, kind, path) -> integer") so the Assembler
	// can mix recency/frequency into sort keys.
	UsageWeight(ctx context.Context, server, kind, path string) int

	// Snippets returns the user-defined snippet list (spec.md §6
	// "Persisted state": the core only reaches snippet storage through
	// the metadata collaborator interface).
	Snippets(ctx context.Context) ([]Snippet, error)
}

// Snippet is a user-defined completion snippet.
type Snippet struct {
	Label       string
	Description string
	InsertText  string
}

// AsyncSource is the asynchronous form of Source: each call returns
// immediately with a future-like channel of one result, for use by
// fanout.Task wrappers that need a context-cancellable handle rather than
// a direct blocking call.
type AsyncSource interface {
	ListDatabasesAsync(ctx context.Context) <-chan Result[[]schema.Database]
	ListSchemasAsync(ctx context.Context, db string) <-chan Result[[]schema.Schema]
	ListTablesAsync(ctx context.Context, db, schemaName string) <-chan Result[[]schema.Table]
	GetColumnsAsync(ctx context.Context, obj schema.ObjectRef) <-chan Result[[]schema.Column]
	GetConstraintsAsync(ctx context.Context, obj schema.ObjectRef) <-chan Result[[]schema.ForeignKey]
}

// Result carries one async call's outcome.
type Result[T any] struct {
	Value T
	Err   error
}
