// Package itemfmt implements the Item Formatter (spec.md §4.9): it takes
// the Assembler's domain-level candidates and produces the final,
// LSP-CompletionItem-compatible wire record (spec.md §6 "Completion item
// wire shape").
package itemfmt

import (
	"fmt"
	"strings"

	"github.com/sadopc/sqlscope/internal/assemble"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/token"
)

// Kind is the small LSP-compatible kind enum consumers switch on
// (spec.md §4.9: "field, class, function, keyword, snippet, module,
// folder, reference, struct, variable").
type Kind int

const (
	KindField Kind = iota + 1
	KindClass
	KindFunction
	KindKeyword
	KindSnippet
	KindModule
	KindFolder
	KindReference
	KindStruct
	KindVariable
)

// InsertTextFormat mirrors LSP's insertTextFormat: 1 = PlainText, 2 = Snippet.
type InsertTextFormat int

const (
	PlainText     InsertTextFormat = 1
	SnippetFormat InsertTextFormat = 2
)

// Item is the final, wire-ready completion record (spec.md §4.9/§6).
type Item struct {
	Label            string
	InsertText       string
	Kind             Kind
	Detail           string
	Documentation    string
	SortText         string
	FilterText       string
	InsertTextFormat InsertTextFormat
}

// Format renders one Assembler item into its wire shape. dialect controls
// identifier quoting for insert_text; showSchema controls whether a
// schema prefix is added when the item isn't already schema-omitted.
func Format(it assemble.Item, d token.Dialect, showSchema bool) Item {
	out := Item{
		Label:            it.Label,
		Kind:             kindFor(it),
		Detail:           it.Detail,
		Documentation:    it.Documentation,
		SortText:         it.SortKey(),
		FilterText:       it.Label,
		InsertTextFormat: PlainText,
	}
	out.InsertText = insertTextFor(it, d, showSchema)

	if it.Band == assemble.BandSnippet {
		out.InsertTextFormat = SnippetFormat
		out.InsertText = it.Label // snippet body is carried in Documentation/caller-supplied text
	}
	return out
}

// FormatAll formats a whole ranked list, preserving order (the Assembler
// already sorted it; the Formatter never re-sorts).
func FormatAll(items []assemble.Item, d token.Dialect, showSchema bool) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Format(it, d, showSchema)
	}
	return out
}

func kindFor(it assemble.Item) Kind {
	switch {
	case it.IsColumn:
		return KindField
	case it.Band == assemble.BandSnippet:
		return KindSnippet
	case it.Band == assemble.BandKeyword:
		return KindKeyword
	case it.Band == assemble.BandScalarFunction, it.Band == assemble.BandBuiltinFunction, it.Band == assemble.BandTableValuedFunction:
		return KindFunction
	case it.Kind == schema.KindProcedure:
		return KindFunction
	case it.Band == assemble.BandFK1Hop, it.Band == assemble.BandFK2Hop, it.Band == assemble.BandFK3Hop:
		return KindReference
	default:
		return KindClass
	}
}

// insertTextFor applies dialect-aware identifier quoting and schema
// prefixing based on omit flags. Columns and keywords insert bare;
// tables/views/etc. get a schema prefix unless the cursor already typed it.
func insertTextFor(it assemble.Item, d token.Dialect, showSchema bool) string {
	name := quoteIdentifier(it.Label, d)
	if it.IsColumn || it.Band == assemble.BandKeyword || it.Band == assemble.BandSnippet {
		return name
	}
	if showSchema && it.SchemaQual != "" {
		return quoteQualified(it.SchemaQual, d) + "." + name
	}
	return name
}

func quoteQualified(qual string, d token.Dialect) string {
	parts := strings.Split(qual, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p, d)
	}
	return strings.Join(parts, ".")
}

// quoteIdentifier quotes name per dialect only when it contains a space,
// hyphen or dot, or starts with a digit; otherwise it is emitted bare,
// matching how a user would normally type it. Reserved words are not
// checked, so a name such as order is emitted bare.
func quoteIdentifier(name string, d token.Dialect) string {
	if name == "" || !needsQuoting(name) {
		return name
	}
	switch d {
	case token.SQLServer:
		return "[" + name + "]"
	case token.MySQL:
		return "`" + name + "`"
	default: // Postgres, SQLite, DuckDB
		return `"` + name + `"`
	}
}

func needsQuoting(name string) bool {
	if strings.ContainsAny(name, " -.") {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	return false
}

// Detail renders a one-line summary for a table/view-shaped item, per
// spec.md §4.9 "schema.table (TABLE)".
func Detail(schemaQual string, kind schema.ObjectKind) string {
	if schemaQual == "" {
		return fmt.Sprintf("(%s)", strings.ToUpper(kind.String()))
	}
	return fmt.Sprintf("%s (%s)", schemaQual, strings.ToUpper(kind.String()))
}
