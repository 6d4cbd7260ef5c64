// Package scope builds the cursor's visible table list from a statement
// chunk and the classifier's captured subquery tables (spec.md §4.5).
package scope

import (
	"strings"

	"github.com/sadopc/sqlscope/internal/classify"
	"github.com/sadopc/sqlscope/internal/stmt"
)

// Entry is one table visible at the cursor.
type Entry struct {
	Name       string
	Schema     string
	Database   string
	Alias      string
	IsCTE      bool
	IsTemp     bool
	IsGlobal   bool
	IsSubquery bool
	IsTVF      bool
	Columns    []string
}

// Scope is the cursor's resolved visible-table environment.
type Scope struct {
	Tables  []Entry
	Aliases map[string]string // lowercased alias -> qualified path ("db.schema.name" | "schema.name" | "name")
}

// Build produces a Scope from the classifier's output and its enclosing
// chunk. When ctx carries SubqueryTables (the classifier descended into an
// unparsed subquery), those shadow the outer chunk's tables entirely, per
// spec.md §4.5 "inner query scope wins".
func Build(chunk *stmt.StatementChunk, ctx classify.CursorContext) Scope {
	s := Scope{Aliases: map[string]string{}}

	if len(ctx.SubqueryTables) > 0 {
		for _, ref := range ctx.SubqueryTables {
			s.addTableRef(ref)
		}
		return s
	}

	if chunk == nil {
		return s
	}

	for name, entry := range chunk.CTEs {
		e := Entry{Name: name, IsCTE: true, Columns: entry.Columns}
		s.Tables = append(s.Tables, e)
		s.Aliases[strings.ToLower(name)] = name
	}
	for name, entry := range chunk.TempTables {
		e := Entry{Name: name, IsTemp: true, IsGlobal: entry.IsGlobal, Columns: entry.Columns}
		s.Tables = append(s.Tables, e)
		s.Aliases[strings.ToLower(name)] = name
	}
	for _, ref := range chunk.TableRefs {
		if ref.IsCTE || ref.IsTemp {
			continue // already added from the chunk's own maps above
		}
		s.addTableRef(ref)
	}
	return s
}

func (s *Scope) addTableRef(ref stmt.TableReference) {
	e := Entry{
		Name:       ref.Name,
		Schema:     ref.Schema,
		Database:   ref.Database,
		Alias:      ref.Alias,
		IsCTE:      ref.IsCTE,
		IsTemp:     ref.IsTemp,
		IsSubquery: ref.IsSubquery,
		IsTVF:      ref.IsTVF,
		Columns:    ref.Columns,
	}
	key := dedupKey(e)
	for _, existing := range s.Tables {
		if dedupKey(existing) == key {
			return
		}
	}
	s.Tables = append(s.Tables, e)

	path := qualifiedPath(ref.Database, ref.Schema, ref.Name)
	if ref.Alias != "" {
		s.Aliases[strings.ToLower(ref.Alias)] = path
	} else if ref.Name != "" {
		s.Aliases[strings.ToLower(ref.Name)] = path
	}
}

func dedupKey(e Entry) string {
	key := strings.ToLower(e.Alias)
	if key == "" {
		key = strings.ToLower(qualifiedPath(e.Database, e.Schema, e.Name))
	}
	return key
}

func qualifiedPath(database, schema, name string) string {
	parts := make([]string, 0, 3)
	if database != "" {
		parts = append(parts, database)
	}
	if schema != "" {
		parts = append(parts, schema)
	}
	parts = append(parts, name)
	return strings.Join(parts, ".")
}
