package itemfmt

import (
	"testing"

	"github.com/sadopc/sqlscope/internal/assemble"
	"github.com/sadopc/sqlscope/internal/token"
)

func TestFormat_Column(t *testing.T) {
	it := assemble.Item{Label: "CustomerID", IsColumn: true}
	got := Format(it, token.SQLServer, true)
	if got.Kind != KindField {
		t.Errorf("Kind = %v, want KindField", got.Kind)
	}
	if got.InsertText != "CustomerID" {
		t.Errorf("InsertText = %q", got.InsertText)
	}
	if got.InsertTextFormat != PlainText {
		t.Errorf("InsertTextFormat = %v, want PlainText", got.InsertTextFormat)
	}
}

func TestFormat_TableWithSchemaPrefix(t *testing.T) {
	it := assemble.Item{Label: "Orders", SchemaQual: "dbo"}
	got := Format(it, token.SQLServer, true)
	if got.InsertText != "dbo.Orders" {
		t.Errorf("InsertText = %q", got.InsertText)
	}
}

func TestFormat_TableOmitSchema(t *testing.T) {
	it := assemble.Item{Label: "Orders", SchemaQual: "dbo"}
	got := Format(it, token.SQLServer, false)
	if got.InsertText != "Orders" {
		t.Errorf("InsertText = %q", got.InsertText)
	}
}

func TestFormat_QuotesIdentifierWithSpace(t *testing.T) {
	it := assemble.Item{Label: "Order Details"}
	got := Format(it, token.SQLServer, false)
	if got.InsertText != "[Order Details]" {
		t.Errorf("InsertText = %q", got.InsertText)
	}
	got = Format(it, token.MySQL, false)
	if got.InsertText != "`Order Details`" {
		t.Errorf("InsertText(mysql) = %q", got.InsertText)
	}
	got = Format(it, token.Postgres, false)
	if got.InsertText != `"Order Details"` {
		t.Errorf("InsertText(postgres) = %q", got.InsertText)
	}
}

func TestFormat_Keyword(t *testing.T) {
	it := assemble.Item{Label: "SELECT", Band: assemble.BandKeyword}
	got := Format(it, token.Postgres, true)
	if got.Kind != KindKeyword || got.InsertText != "SELECT" {
		t.Errorf("got = %+v", got)
	}
}

func TestFormat_SortTextMatchesAssemblerKey(t *testing.T) {
	it := assemble.Item{Label: "Orders", Band: assemble.BandTable}
	got := Format(it, token.Postgres, false)
	if got.SortText != it.SortKey() {
		t.Errorf("SortText = %q, want %q", got.SortText, it.SortKey())
	}
}

func TestFormatAll_PreservesOrder(t *testing.T) {
	items := []assemble.Item{
		{Label: "b", Band: assemble.BandTable},
		{Label: "a", Band: assemble.BandTable},
	}
	got := FormatAll(items, token.Postgres, false)
	if got[0].Label != "b" || got[1].Label != "a" {
		t.Errorf("order changed: %+v", got)
	}
}
