package adapter

import (
	"context"

	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/usage"
)

// MetadataBridge adapts a live database Connection to metadata.Source, the
// interface the completion core's Resolver/FK Graph Engine/Assembler
// consume (spec.md §4.6/§6). It is the concrete, swappable implementation
// of the "external collaborator" the core spec only names at the interface
// boundary.
//
// Connection exposes table/column/FK introspection but no view, synonym,
// procedure, or function listing, so MetadataBridge reports those kinds as
// unsupported via Features rather than fabricating empty-but-claimed
// support.
type MetadataBridge struct {
	Conn         Connection
	Server       string
	Usage        *usage.Store       // nil disables usage-weight tracking
	LoadSnippets []metadata.Snippet // pre-loaded via internal/snippet, may be nil
}

// NewMetadataBridge wires a Connection (and optionally a usage.Store) into
// a metadata.Source.
func NewMetadataBridge(conn Connection, server string, u *usage.Store) *MetadataBridge {
	return &MetadataBridge{Conn: conn, Server: server, Usage: u}
}

func (b *MetadataBridge) ListDatabases(ctx context.Context) ([]schema.Database, error) {
	return b.Conn.Databases(ctx)
}

func (b *MetadataBridge) ListSchemas(ctx context.Context, db string) ([]schema.Schema, error) {
	dbs, err := b.Conn.Databases(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range dbs {
		if d.Name == db {
			return d.Schemas, nil
		}
	}
	return nil, nil
}

func (b *MetadataBridge) ListTables(ctx context.Context, db, schemaName string) ([]schema.Table, error) {
	return b.Conn.Tables(ctx, db, schemaName)
}

// ListViews, ListSynonyms, ListProcedures always return an empty,
// error-free list: Connection has no introspection for these object kinds,
// and Features reports them unsupported so callers never expect them.
func (b *MetadataBridge) ListViews(ctx context.Context, db, schemaName string) ([]schema.View, error) {
	return nil, nil
}

func (b *MetadataBridge) ListSynonyms(ctx context.Context, db, schemaName string) ([]schema.Synonym, error) {
	return nil, nil
}

func (b *MetadataBridge) ListProcedures(ctx context.Context, db, schemaName string) ([]schema.Procedure, error) {
	return nil, nil
}

func (b *MetadataBridge) ListFunctions(ctx context.Context, db, schemaName string) ([]schema.Function, error) {
	return nil, nil
}

func (b *MetadataBridge) GetColumns(ctx context.Context, obj schema.ObjectRef) ([]schema.Column, error) {
	return b.Conn.Columns(ctx, obj.Database, obj.Schema, obj.Name)
}

func (b *MetadataBridge) GetParameters(ctx context.Context, obj schema.ObjectRef) ([]schema.Parameter, error) {
	return nil, nil
}

func (b *MetadataBridge) GetConstraints(ctx context.Context, obj schema.ObjectRef) ([]schema.ForeignKey, error) {
	return b.Conn.ForeignKeys(ctx, obj.Database, obj.Schema, obj.Name)
}

// Features reports what this bridge can actually answer beyond tables,
// columns and FKs: schema listing only, regardless of dialect. Views,
// synonyms, procedures and functions are reported as unsupported.
func (b *MetadataBridge) Features(dialect string) schema.Feature {
	return schema.Feature{Schemas: true}
}

func (b *MetadataBridge) UsageWeight(ctx context.Context, server, kind, path string) int {
	if b.Usage == nil {
		return 0
	}
	return b.Usage.UsageWeight(ctx, server, kind, path)
}

func (b *MetadataBridge) Snippets(ctx context.Context) ([]metadata.Snippet, error) {
	return b.LoadSnippets, nil
}
