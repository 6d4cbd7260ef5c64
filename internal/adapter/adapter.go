package adapter

import (
	"context"
	"errors"

	"github.com/sadopc/sqlscope/internal/schema"
)

var ErrNotConnected = errors.New("not connected to database")

// Adapter creates database connections.
type Adapter interface {
	Connect(ctx context.Context, dsn string) (Connection, error)
	Name() string
	DefaultPort() int
}

// Connection represents an active database connection. It exposes only the
// introspection surface the Metadata Resolver needs (spec.md §4.6) plus the
// lifecycle methods the CLI drives directly; it is not a general-purpose
// query-execution connection.
type Connection interface {
	// Introspection
	Databases(ctx context.Context) ([]schema.Database, error)
	Tables(ctx context.Context, db, schemaName string) ([]schema.Table, error)
	Columns(ctx context.Context, db, schemaName, table string) ([]schema.Column, error)
	Indexes(ctx context.Context, db, schemaName, table string) ([]schema.Index, error)
	ForeignKeys(ctx context.Context, db, schemaName, table string) ([]schema.ForeignKey, error)

	// Lifecycle
	Close() error

	// Info
	DatabaseName() string
	AdapterName() string
}

// Registry holds registered adapters by name.
var Registry = map[string]Adapter{}

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	Registry[a.Name()] = a
}
