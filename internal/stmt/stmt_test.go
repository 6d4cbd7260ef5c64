package stmt

import (
	"testing"

	"github.com/sadopc/sqlscope/internal/token"
)

func parseSQL(t *testing.T, sql string, d token.Dialect) []*StatementChunk {
	t.Helper()
	toks, err := token.Tokenize(sql, d)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return Parse(toks)
}

func TestParse_SimpleSelect(t *testing.T) {
	chunks := parseSQL(t, "SELECT e.name FROM employees e WHERE e.id = 1", token.Postgres)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Leading != "SELECT" {
		t.Errorf("Leading = %q", c.Leading)
	}
	if _, ok := c.Clauses[ClauseFrom]; !ok {
		t.Error("expected a from clause region")
	}
	if _, ok := c.Clauses[ClauseWhere]; !ok {
		t.Error("expected a where clause region")
	}
	ref, ok := c.Aliases["e"]
	if !ok {
		t.Fatal("expected alias e")
	}
	if ref.Name != "employees" {
		t.Errorf("ref.Name = %q", ref.Name)
	}
}

func TestParse_MultipleStatements(t *testing.T) {
	chunks := parseSQL(t, "SELECT 1; SELECT 2;", token.Postgres)
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
}

func TestParse_Join(t *testing.T) {
	chunks := parseSQL(t,
		"SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id",
		token.Postgres)
	c := chunks[0]
	if len(c.TableRefs) != 2 {
		t.Fatalf("len(TableRefs) = %d, want 2", len(c.TableRefs))
	}
	if _, ok := c.Clauses[ClauseJoin]; !ok {
		t.Error("expected a join clause region")
	}
	if _, ok := c.Clauses[ClauseOn]; !ok {
		t.Error("expected an on clause region")
	}
}

func TestParse_CTE(t *testing.T) {
	chunks := parseSQL(t,
		"WITH recent AS (SELECT id, name FROM orders) SELECT * FROM recent",
		token.Postgres)
	c := chunks[0]
	entry, ok := c.CTEs["recent"]
	if !ok {
		t.Fatal("expected cte recent")
	}
	if len(entry.Columns) != 2 {
		t.Errorf("cte columns = %v", entry.Columns)
	}
	ref, ok := c.Aliases["recent"]
	if !ok || !ref.IsCTE {
		t.Errorf("expected recent to resolve as a cte table ref, got %+v ok=%v", ref, ok)
	}
}

func TestParse_TempTable(t *testing.T) {
	chunks := parseSQL(t, "CREATE TABLE #staging (id INT, name TEXT)", token.SQLServer)
	c := chunks[0]
	entry, ok := c.TempTables["#staging"]
	if !ok {
		t.Fatal("expected temp table #staging")
	}
	if entry.IsGlobal {
		t.Error("expected non-global temp table")
	}
}

func TestParse_Subquery(t *testing.T) {
	chunks := parseSQL(t,
		"SELECT * FROM (SELECT id FROM orders) sub",
		token.Postgres)
	c := chunks[0]
	if len(c.TableRefs) != 1 || !c.TableRefs[0].IsSubquery {
		t.Fatalf("TableRefs = %+v", c.TableRefs)
	}
	if c.Subquery == nil {
		t.Error("expected nested subquery chunk to be recorded")
	}
}

func TestParse_BatchSeparator(t *testing.T) {
	chunks := parseSQL(t, "SELECT 1\nGO\nSELECT 2", token.SQLServer)
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
}

func TestParse_Merge(t *testing.T) {
	sql := "MERGE INTO target t USING source s ON t.id = s.id WHEN NOT MATCHED THEN INSERT (id) VALUES (s.id)"
	chunks := parseSQL(t, sql, token.SQLServer)
	c := chunks[0]
	if c.Leading != "MERGE" {
		t.Errorf("Leading = %q", c.Leading)
	}
	if len(c.TableRefs) != 2 {
		t.Fatalf("TableRefs = %+v", c.TableRefs)
	}
}
