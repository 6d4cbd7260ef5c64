package fkgraph

import (
	"context"
	"testing"

	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
)

func chainSource() *metadata.Fake {
	f := metadata.NewFake("TEST", "dbo")
	f.AddTable(schema.Table{
		Name: "Orders",
		FKs: []schema.ForeignKey{
			{Name: "FK_Orders_Customers", Columns: []string{"CustomerID"}, RefTable: "Customers", RefColumns: []string{"ID"}},
		},
	})
	f.AddTable(schema.Table{
		Name: "Customers",
		FKs: []schema.ForeignKey{
			{Name: "FK_Customers_Regions", Columns: []string{"RegionID"}, RefTable: "Regions", RefColumns: []string{"ID"}},
		},
	})
	f.AddTable(schema.Table{Name: "Regions"})
	return f
}

func TestBuild_Hop1(t *testing.T) {
	sc := scope.Scope{Tables: []scope.Entry{{Name: "Orders", Schema: "dbo"}}}
	out, err := Build(context.Background(), chainSource(), "TEST", "dbo", sc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out[1]) != 1 || out[1][0].TargetTable != "Customers" {
		t.Fatalf("hop1 = %+v", out[1])
	}
	if out[1][0].Label() != "Customers" {
		t.Errorf("Label = %q", out[1][0].Label())
	}
}

func TestBuild_Hop2ViaLabel(t *testing.T) {
	sc := scope.Scope{Tables: []scope.Entry{{Name: "Orders", Schema: "dbo"}}}
	out, err := Build(context.Background(), chainSource(), "TEST", "dbo", sc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out[2]) != 1 || out[2][0].TargetTable != "Regions" {
		t.Fatalf("hop2 = %+v", out[2])
	}
	if out[2][0].Label() != "Regions (via Customers)" {
		t.Errorf("Label = %q", out[2][0].Label())
	}
}

func TestBuild_ExcludesInScope(t *testing.T) {
	sc := scope.Scope{Tables: []scope.Entry{
		{Name: "Orders", Schema: "dbo"},
		{Name: "Customers", Schema: "dbo"},
	}}
	out, err := Build(context.Background(), chainSource(), "TEST", "dbo", sc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, cands := range out {
		for _, c := range cands {
			if c.TargetTable == "Customers" || c.TargetTable == "Orders" {
				t.Errorf("in-scope table suggested: %+v", c)
			}
		}
	}
}

func TestBuild_CycleAvoidance(t *testing.T) {
	f := metadata.NewFake("TEST", "dbo")
	f.AddTable(schema.Table{
		Name: "A",
		FKs:  []schema.ForeignKey{{Name: "FK_A_B", RefTable: "B"}},
	})
	f.AddTable(schema.Table{
		Name: "B",
		FKs:  []schema.ForeignKey{{Name: "FK_B_A", RefTable: "A"}},
	})
	sc := scope.Scope{Tables: []scope.Entry{{Name: "A", Schema: "dbo"}}}
	out, err := Build(context.Background(), f, "TEST", "dbo", sc, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out[1]) != 1 || out[1][0].TargetTable != "B" {
		t.Fatalf("hop1 = %+v", out[1])
	}
	if len(out[2]) != 0 {
		t.Fatalf("hop2 should be empty (A already in-scope): %+v", out[2])
	}
}
