// Package resolve implements the Metadata Resolver (spec.md §4.6): it maps
// names/aliases in the cursor's scope to concrete metadata objects and
// fetches columns across tables concurrently via internal/fanout,
// preserving source order and per-source errors.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/sqlscope/internal/coreerr"
	"github.com/sadopc/sqlscope/internal/fanout"
	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
)

// Resolver resolves names against a connected metadata Source.
type Resolver struct {
	Source   metadata.Source
	Server   string
	Database string
	Schema   string
}

// New builds a Resolver bound to a connection's coordinates.
func New(src metadata.Source, server, database, schemaName string) *Resolver {
	return &Resolver{Source: src, Server: server, Database: database, Schema: schemaName}
}

// ColumnRecord is one resolved column plus the table path it came from,
// for provenance (spec.md §4.6 "preserving per-column provenance").
type ColumnRecord struct {
	Column       schema.Column
	SourceTable  string // qualified path, e.g. "dbo.Orders"
	SourceAlias  string
	IsCTE        bool
	IsTemp       bool
}

// SourceError records a per-source metadata failure so the Assembler can
// demote/annotate rather than the Resolver silently dropping it (spec.md
// §4.6, §7 MetadataError).
type SourceError struct {
	Table string
	Err   error
}

// ColumnsResult is the Resolver's fan-out output: columns in source order,
// plus any per-source errors encountered along the way.
type ColumnsResult struct {
	Columns []ColumnRecord
	Errors  []SourceError
}

// ResolveObject maps a (possibly partially-qualified) name to a concrete
// ObjectRef honoring the cursor's alias map and CTE/temp/subquery
// environment (spec.md §4.6). It returns false when nothing matches.
func ResolveObject(sc scope.Scope, name string, database, schemaName string) (schema.ObjectRef, bool) {
	key := strings.ToLower(name)
	if path, ok := sc.Aliases[key]; ok {
		return objectRefFromPath(path, database, schemaName)
	}
	for _, t := range sc.Tables {
		if strings.EqualFold(t.Name, name) {
			return schema.ObjectRef{Database: t.Database, Schema: t.Schema, Name: t.Name, Kind: refKind(t)}, true
		}
	}
	return schema.ObjectRef{}, false
}

func refKind(e scope.Entry) schema.ObjectKind {
	switch {
	case e.IsTVF:
		return schema.KindTableValuedFunction
	default:
		return schema.KindTable
	}
}

func objectRefFromPath(path, defaultDatabase, defaultSchema string) (schema.ObjectRef, bool) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 1:
		return schema.ObjectRef{Database: defaultDatabase, Schema: defaultSchema, Name: parts[0], Kind: schema.KindTable}, true
	case 2:
		return schema.ObjectRef{Database: defaultDatabase, Schema: parts[0], Name: parts[1], Kind: schema.KindTable}, true
	case 3:
		return schema.ObjectRef{Database: parts[0], Schema: parts[1], Name: parts[2], Kind: schema.KindTable}, true
	default:
		return schema.ObjectRef{}, false
	}
}

// FetchColumns fetches columns for every table in sc concurrently via
// fanout.Spawn, then merges the results back in sc.Tables order (spec.md
// §5 "Ordering guarantees"). A per-table error becomes a SourceError
// rather than aborting the whole fetch; a table's columns are simply
// omitted from the merged list when its fetch failed.
func (r *Resolver) FetchColumns(ctx context.Context, sc scope.Scope) (ColumnsResult, error) {
	tasks := make([]fanout.Task[tableColumns], len(sc.Tables))
	for i, t := range sc.Tables {
		t := t
		tasks[i] = func(ctx context.Context) (tableColumns, error) {
			if len(t.Columns) > 0 && (t.IsCTE || t.IsTemp || t.IsSubquery) {
				// CTE/temp/subquery column lists are already known from
				// parsing; no metadata round-trip needed.
				cols := make([]schema.Column, len(t.Columns))
				for i, name := range t.Columns {
					cols[i] = schema.Column{Name: name, Ordinal: i}
				}
				return tableColumns{entry: t, columns: cols}, nil
			}
			obj := schema.ObjectRef{Database: t.Database, Schema: t.Schema, Name: t.Name, Kind: refKind(t)}
			if obj.Schema == "" {
				obj.Schema = r.Schema
			}
			if obj.Database == "" {
				obj.Database = r.Database
			}
			cols, err := r.Source.GetColumns(ctx, obj)
			if err != nil {
				return tableColumns{entry: t}, fmt.Errorf("%w: columns for %s: %v", coreerr.ErrMetadata, t.Name, err)
			}
			return tableColumns{entry: t, columns: cols}, nil
		}
	}

	results, err := fanout.Spawn(ctx, tasks)
	if err != nil {
		return ColumnsResult{}, fmt.Errorf("%w: %v", coreerr.ErrCancelled, err)
	}

	var out ColumnsResult
	for _, res := range results {
		if res.Err != nil {
			out.Errors = append(out.Errors, SourceError{Table: res.Value.entry.Name, Err: res.Err})
			continue
		}
		path := sourcePath(res.Value.entry)
		for _, col := range res.Value.columns {
			out.Columns = append(out.Columns, ColumnRecord{
				Column:      col,
				SourceTable: path,
				SourceAlias: res.Value.entry.Alias,
				IsCTE:       res.Value.entry.IsCTE,
				IsTemp:      res.Value.entry.IsTemp,
			})
		}
	}
	return out, nil
}

type tableColumns struct {
	entry   scope.Entry
	columns []schema.Column
}

func sourcePath(e scope.Entry) string {
	parts := make([]string, 0, 3)
	if e.Database != "" {
		parts = append(parts, e.Database)
	}
	if e.Schema != "" {
		parts = append(parts, e.Schema)
	}
	parts = append(parts, e.Name)
	return strings.Join(parts, ".")
}

// UsageWeight exposes the resolver's usage-store lookup for the Assembler
// to mix into sort keys (spec.md §4.6).
func (r *Resolver) UsageWeight(ctx context.Context, kind, path string) int {
	return r.Source.UsageWeight(ctx, r.Server, kind, path)
}
