package metadata

import (
	"context"
	"strings"

	"github.com/sadopc/sqlscope/internal/schema"
)

// Fake is an in-memory Source for tests: a single database/schema holding
// a fixed table list, keyed by lowercase table name (the schema is not part
// of the key). Err is keyed by ObjectRef.Key(), lowercase "schema.table".
type Fake struct {
	Database   string
	SchemaName string
	Tables     map[string]schema.Table
	Weights    map[string]int
	Snippets_  []Snippet
	Err        map[string]error // object key -> forced GetColumns/GetConstraints error
}

// NewFake builds a Fake with empty maps ready for population.
func NewFake(database, schemaName string) *Fake {
	return &Fake{
		Database:   database,
		SchemaName: schemaName,
		Tables:     map[string]schema.Table{},
		Weights:    map[string]int{},
		Err:        map[string]error{},
	}
}

// AddTable registers a table (with its columns/FKs) under the given name.
func (f *Fake) AddTable(t schema.Table) {
	f.Tables[strings.ToLower(t.Name)] = t
}

func (f *Fake) ListDatabases(ctx context.Context) ([]schema.Database, error) {
	return []schema.Database{{Name: f.Database}}, nil
}

func (f *Fake) ListSchemas(ctx context.Context, db string) ([]schema.Schema, error) {
	return []schema.Schema{{Name: f.SchemaName}}, nil
}

func (f *Fake) ListTables(ctx context.Context, db, schemaName string) ([]schema.Table, error) {
	out := make([]schema.Table, 0, len(f.Tables))
	for _, t := range f.Tables {
		out = append(out, t)
	}
	return out, nil
}

func (f *Fake) ListViews(ctx context.Context, db, schemaName string) ([]schema.View, error) {
	return nil, nil
}

func (f *Fake) ListSynonyms(ctx context.Context, db, schemaName string) ([]schema.Synonym, error) {
	return nil, nil
}

func (f *Fake) ListProcedures(ctx context.Context, db, schemaName string) ([]schema.Procedure, error) {
	return nil, nil
}

func (f *Fake) ListFunctions(ctx context.Context, db, schemaName string) ([]schema.Function, error) {
	return nil, nil
}

func (f *Fake) GetColumns(ctx context.Context, obj schema.ObjectRef) ([]schema.Column, error) {
	if err, ok := f.Err[obj.Key()]; ok {
		return nil, err
	}
	t, ok := f.Tables[strings.ToLower(obj.Name)]
	if !ok {
		return nil, nil
	}
	return t.Columns, nil
}

func (f *Fake) GetParameters(ctx context.Context, obj schema.ObjectRef) ([]schema.Parameter, error) {
	return nil, nil
}

func (f *Fake) GetConstraints(ctx context.Context, obj schema.ObjectRef) ([]schema.ForeignKey, error) {
	if err, ok := f.Err[obj.Key()]; ok {
		return nil, err
	}
	t, ok := f.Tables[strings.ToLower(obj.Name)]
	if !ok {
		return nil, nil
	}
	return t.FKs, nil
}

func (f *Fake) Features(dialect string) schema.Feature {
	return schema.Feature{Views: true, Procedures: true, Functions: true, Synonyms: true, Schemas: true}
}

func (f *Fake) UsageWeight(ctx context.Context, server, kind, path string) int {
	return f.Weights[strings.ToLower(kind+":"+path)]
}

func (f *Fake) Snippets(ctx context.Context) ([]Snippet, error) {
	return f.Snippets_, nil
}
