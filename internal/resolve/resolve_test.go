package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
)

func fakeSource() *metadata.Fake {
	f := metadata.NewFake("TEST", "dbo")
	f.AddTable(schema.Table{
		Name: "Orders",
		Columns: []schema.Column{
			{Name: "ID", Type: "int", IsPK: true, Ordinal: 0},
			{Name: "CustomerID", Type: "int", Ordinal: 1},
		},
	})
	f.AddTable(schema.Table{
		Name: "Customers",
		Columns: []schema.Column{
			{Name: "ID", Type: "int", IsPK: true, Ordinal: 0},
			{Name: "Name", Type: "varchar(100)", Ordinal: 1},
		},
	})
	return f
}

func TestResolveObject_ByAlias(t *testing.T) {
	sc := scope.Scope{
		Tables:  []scope.Entry{{Name: "Orders", Alias: "o", Schema: "dbo"}},
		Aliases: map[string]string{"o": "dbo.Orders"},
	}
	ref, ok := ResolveObject(sc, "o", "TEST", "dbo")
	if !ok || ref.Name != "Orders" || ref.Schema != "dbo" {
		t.Fatalf("ref = %+v, ok = %v", ref, ok)
	}
}

func TestResolveObject_ByBareName(t *testing.T) {
	sc := scope.Scope{
		Tables:  []scope.Entry{{Name: "Orders", Schema: "dbo"}},
		Aliases: map[string]string{"orders": "dbo.Orders"},
	}
	ref, ok := ResolveObject(sc, "Orders", "TEST", "dbo")
	if !ok || ref.Name != "Orders" {
		t.Fatalf("ref = %+v, ok = %v", ref, ok)
	}
}

func TestFetchColumns_OrderAndProvenance(t *testing.T) {
	r := New(fakeSource(), "srv", "TEST", "dbo")
	sc := scope.Scope{Tables: []scope.Entry{
		{Name: "Orders", Schema: "dbo", Alias: "o"},
		{Name: "Customers", Schema: "dbo", Alias: "c"},
	}}
	res, err := r.FetchColumns(context.Background(), sc)
	if err != nil {
		t.Fatalf("FetchColumns: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	if len(res.Columns) != 4 {
		t.Fatalf("Columns = %+v", res.Columns)
	}
	// Orders' columns must precede Customers' (source order).
	if res.Columns[0].SourceTable != "dbo.Orders" || res.Columns[2].SourceTable != "dbo.Customers" {
		t.Errorf("order wrong: %+v", res.Columns)
	}
}

func TestFetchColumns_PerSourceError(t *testing.T) {
	f := fakeSource()
	f.Err["dbo.orders"] = errors.New("connection reset")
	r := New(f, "srv", "TEST", "dbo")
	sc := scope.Scope{Tables: []scope.Entry{
		{Name: "Orders", Schema: "dbo"},
		{Name: "Customers", Schema: "dbo"},
	}}
	res, err := r.FetchColumns(context.Background(), sc)
	if err != nil {
		t.Fatalf("FetchColumns: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Table != "Orders" {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	// Customers still resolved despite Orders' failure.
	if len(res.Columns) != 2 {
		t.Fatalf("Columns = %+v", res.Columns)
	}
}

func TestFetchColumns_CTEUsesParsedColumns(t *testing.T) {
	r := New(fakeSource(), "srv", "TEST", "dbo")
	sc := scope.Scope{Tables: []scope.Entry{
		{Name: "recent", IsCTE: true, Columns: []string{"id", "total"}},
	}}
	res, err := r.FetchColumns(context.Background(), sc)
	if err != nil {
		t.Fatalf("FetchColumns: %v", err)
	}
	if len(res.Columns) != 2 || res.Columns[0].Column.Name != "id" {
		t.Fatalf("Columns = %+v", res.Columns)
	}
	if !res.Columns[0].IsCTE {
		t.Errorf("IsCTE = false")
	}
}
