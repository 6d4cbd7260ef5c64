// Package assemble implements the Completion Assembler (spec.md §4.8) and
// its Type-Compatibility Submodule (spec.md §4.10): it turns a
// CursorContext plus resolver/FK-graph output into a ranked, deduplicated
// list of domain completion candidates ready for internal/itemfmt.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/sqlscope/internal/classify"
	"github.com/sadopc/sqlscope/internal/fkgraph"
	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/resolve"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
)

// Band is a completion's priority band; lower sorts earlier (spec.md §4.8
// step 5).
type Band int

const (
	BandCTE Band = iota
	BandTempTable
	BandTable
	BandView
	BandSynonym
	BandTableValuedFunction
	BandScalarFunction
	BandFK1Hop
	BandFK2Hop
	BandFK3Hop
	BandBuiltinFunction
	BandKeyword
	BandSnippet
)

// incompatibleDemotion is added to a band's numeric value when a VALUES/SET
// candidate's type is flagged incompatible with the target column
// (spec.md §4.10 "demoted by adding a fixed offset to their priority band").
const incompatibleDemotion = 100

// Item is one domain-level completion candidate, prior to LSP formatting.
type Item struct {
	Label         string
	Band          Band
	Ordinal       int    // secondary sort key for columns (source ordinal); 0 otherwise
	SchemaQual    string // schema.table the item belongs to, for detail text
	Kind          schema.ObjectKind
	IsColumn      bool
	ColumnType    string
	Nullable      bool
	IsPK          bool
	IsFK          bool
	UsageWeight   int
	Compatibility Compatibility
	FKHop         int
	FKVia         string
	Detail        string
	Documentation string
}

// SortKey assembles the string key described in spec.md §4.8 step 5:
// zero-padded band, usage-weight adjustment (subtracted, bounded so bands
// never swap), then a secondary key (ordinal for columns, name otherwise).
func (it Item) SortKey() string {
	band := int(it.Band)
	if it.Compatibility == Incompatible {
		band += incompatibleDemotion
	}
	// Usage weight nudges within a band only: clamp to [0,99] so it can
	// never push an item's adjusted value into a neighboring band.
	w := it.UsageWeight
	if w < 0 {
		w = 0
	}
	if w > 99 {
		w = 99
	}
	adjusted := band*100 + (99 - w)

	secondary := it.Label
	if it.IsColumn {
		secondary = fmt.Sprintf("%08d", it.Ordinal)
	}
	return fmt.Sprintf("%06d_%s", adjusted, secondary)
}

// Request bundles everything the Assembler needs for one completion
// request, gathered by the caller (internal/complete.Engine) from the
// classifier, scope builder, resolver and FK graph engine.
type Request struct {
	Context   classify.CursorContext
	Scope     scope.Scope
	Columns   resolve.ColumnsResult
	FKDepth   map[int][]fkgraph.Candidate
	Databases []string
	Schemas   []string
	Tables    []schema.Table
	Views     []schema.View
	Synonyms  []schema.Synonym
	TVFs      []schema.Function
	Functions []schema.Function // scalar
	Keywords  []string
	Snippets  []metadata.Snippet
	Weights   func(kind, path string) int // usage lookup, nil-safe
}

// Assemble implements spec.md §4.8 steps 1-6 and returns the final,
// sorted, deduplicated item list.
func Assemble(req Request) []Item {
	ctx := req.Context
	var items []Item

	weight := func(kind, path string) int {
		if req.Weights == nil {
			return 0
		}
		return req.Weights(kind, path)
	}

	switch ctx.Type {
	case classify.TypeColumn:
		items = append(items, columnItems(req, weight)...)
	case classify.TypeTable:
		items = append(items, tableItems(req, weight)...)
	case classify.TypeSchema:
		for _, s := range req.Schemas {
			items = append(items, Item{Label: s, Band: BandTable, Kind: schema.KindTable})
		}
	case classify.TypeDatabase:
		for _, d := range req.Databases {
			items = append(items, Item{Label: d, Band: BandTable, Kind: schema.KindTable})
		}
	case classify.TypeProcedure:
		for _, p := range procedureNames(req) {
			items = append(items, Item{Label: p, Band: BandScalarFunction, Kind: schema.KindProcedure,
				UsageWeight: weight("procedure", p)})
		}
	case classify.TypeKeyword:
		for _, k := range req.Keywords {
			items = append(items, Item{Label: k, Band: BandKeyword})
		}
	}

	for _, sn := range req.Snippets {
		items = append(items, Item{Label: sn.Label, Band: BandSnippet, Documentation: sn.Description})
	}

	items = applyFilters(ctx, items)
	items = dedupWithinBand(items)
	items = fuzzyFilter(ctx.Prefix, items)

	sort.SliceStable(items, func(i, j int) bool { return items[i].SortKey() < items[j].SortKey() })
	return items
}

// itemLabels adapts []Item to fuzzy.Source.
type itemLabels []Item

func (s itemLabels) String(i int) string { return strings.ToLower(s[i].Label) }
func (s itemLabels) Len() int            { return len(s) }

// fuzzyFilter narrows items to those whose label fuzzy-matches the typed
// prefix (spec.md §4.8 step 4). Band/usage ordering from SortKey is left
// to the caller's subsequent sort; this only decides membership, not order,
// so the priority-band ranking spec.md §4.8 specifies isn't overridden by
// fuzzy match score.
func fuzzyFilter(prefix string, items []Item) []Item {
	if prefix == "" || len(items) == 0 {
		return items
	}
	matches := fuzzy.FindFrom(strings.ToLower(prefix), itemLabels(items))
	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}

func procedureNames(req Request) []string {
	// Request carries no procedure list; this offers the names in
	// Functions. complete.Engine leaves Functions empty for procedure
	// contexts, so through it no procedure names are offered.
	var out []string
	for _, f := range req.Functions {
		out = append(out, f.Name)
	}
	return out
}

func columnItems(req Request, weight func(string, string) int) []Item {
	var out []Item
	leftType := targetColumnType(req)
	filterTable := resolveFilterTable(req)
	for _, rec := range req.Columns.Columns {
		if filterTable != "" && !strings.EqualFold(lastSegment(rec.SourceTable), filterTable) {
			continue
		}
		label := rec.Column.Name
		item := Item{
			Label:       label,
			Band:        0, // columns sort flat; banding applies to table-position items
			Ordinal:     rec.Column.Ordinal,
			SchemaQual:  rec.SourceTable,
			IsColumn:    true,
			ColumnType:  rec.Column.Type,
			Nullable:    rec.Column.Nullable,
			IsPK:        rec.Column.IsPK,
			UsageWeight: weight("column", rec.SourceTable+"."+label),
		}
		if leftType != "" {
			item.Compatibility = Classify(leftType, rec.Column.Type)
		}
		item.Detail = columnDetail(rec)
		if item.Compatibility == Incompatible {
			item.Detail += " [incompatible with " + leftType + "]"
			item.Documentation = fmt.Sprintf("Type mismatch: target column is %s, this column is %s.", leftType, rec.Column.Type)
		} else if item.Compatibility == ImplicitConversion {
			item.Documentation = "Compatible via implicit conversion."
		}
		out = append(out, item)
	}
	for _, scal := range req.Functions {
		if scal.IsTableValued {
			continue
		}
		out = append(out, Item{Label: scal.Name, Band: BandScalarFunction, UsageWeight: weight("function", scal.Name)})
	}
	return out
}

// targetColumnType resolves the data type of the VALUES/SET target column
// named in ctx.Extra.LeftSide by looking it up among the already-fetched
// columns (spec.md §4.8 step 2: "look up its data type via the resolver").
func targetColumnType(req Request) string {
	ls := req.Context.Extra.LeftSide
	if ls == nil {
		return ""
	}
	for _, rec := range req.Columns.Columns {
		if !strings.EqualFold(rec.Column.Name, ls.Column) {
			continue
		}
		if ls.Alias != "" && !strings.EqualFold(rec.SourceAlias, ls.Alias) {
			continue
		}
		return rec.Column.Type
	}
	return ""
}

// resolveFilterTable resolves ctx.Extra.FilterTable (an alias, or a bare
// table/schema reference typed before the dot) against sc.Aliases to the
// underlying table name, so "o.|" with FilterTable="o" narrows columns to
// the aliased table rather than every table in scope (spec.md §4.8 step 2).
func resolveFilterTable(req Request) string {
	ref := req.Context.Extra.FilterTable
	if ref == "" {
		return ""
	}
	if path, ok := req.Scope.Aliases[strings.ToLower(ref)]; ok {
		return lastSegment(path)
	}
	return ref
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func columnDetail(rec resolve.ColumnRecord) string {
	markers := ""
	if rec.Column.IsPK {
		markers += " PK"
	}
	nullability := "NOT NULL"
	if rec.Column.Nullable {
		nullability = "NULL"
	}
	return fmt.Sprintf("%s (%s, %s)%s", rec.SourceTable, rec.Column.Type, nullability, markers)
}

func tableItems(req Request, weight func(string, string) int) []Item {
	var out []Item
	ctx := req.Context
	readOnly := hasAnyPrefix(ctx.Mode, "into", "update", "delete", "merge")

	for name := range ctx.CTEs {
		out = append(out, Item{Label: name, Band: BandCTE, Kind: schema.KindTable})
	}
	for name, tmp := range ctx.TempTables {
		out = append(out, Item{Label: name, Band: BandTempTable, Kind: schema.KindTable,
			Detail: fmt.Sprintf("temp table%s", globalMarker(tmp.IsGlobal))})
	}
	for _, t := range req.Scope.Tables {
		if t.IsCTE || t.IsTemp {
			continue // already emitted above from ctx.CTEs/TempTables
		}
		band := BandTable
		if t.IsTVF {
			band = BandTableValuedFunction
		}
		out = append(out, Item{Label: t.Name, Band: band, SchemaQual: qualPath(t.Schema, t.Database),
			UsageWeight: weight("table", t.Name)})
	}
	for _, t := range req.Tables {
		out = append(out, Item{Label: t.Name, Band: BandTable, Kind: schema.KindTable, UsageWeight: weight("table", t.Name)})
	}
	if !readOnly {
		for _, v := range req.Views {
			out = append(out, Item{Label: v.Name, Band: BandView, Kind: schema.KindView, UsageWeight: weight("view", v.Name)})
		}
		for _, s := range req.Synonyms {
			out = append(out, Item{Label: s.Name, Band: BandSynonym, Kind: schema.KindSynonym, Detail: "-> " + s.Target})
		}
		for _, f := range req.TVFs {
			out = append(out, Item{Label: f.Name, Band: BandTableValuedFunction, Kind: schema.KindTableValuedFunction})
		}
	}

	if ctx.Mode == "join" || ctx.Mode == "join_qualified" || ctx.Mode == "join_cross_db_qualified" {
		out = append(out, fkItems(req)...)
	}

	return out
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func globalMarker(global bool) string {
	if global {
		return ", global"
	}
	return ""
}

func qualPath(schemaName, database string) string {
	parts := make([]string, 0, 2)
	if database != "" {
		parts = append(parts, database)
	}
	if schemaName != "" {
		parts = append(parts, schemaName)
	}
	return strings.Join(parts, ".")
}

func fkItems(req Request) []Item {
	var out []Item
	bandFor := func(hop int) Band {
		switch hop {
		case 1:
			return BandFK1Hop
		case 2:
			return BandFK2Hop
		default:
			return BandFK3Hop
		}
	}
	for hop, cands := range req.FKDepth {
		for _, c := range cands {
			out = append(out, Item{
				Label:  c.Label(),
				Band:   bandFor(hop),
				FKHop:  hop,
				FKVia:  c.ViaTable,
				Detail: fmt.Sprintf("FK via %s (%s)", strings.Join(c.Path, " -> "), c.Constraint),
			})
		}
	}
	return out
}

// applyFilters narrows by the schema hint only: an item whose SchemaQual is
// set and does not contain FilterSchema is dropped, and when that drops
// every item the unfiltered list is returned. FilterDatabase on its own
// starts the pass but is not matched against anything. FilterTable is
// already applied upstream in columnItems against ColumnRecord.SourceTable.
func applyFilters(ctx classify.CursorContext, items []Item) []Item {
	ex := ctx.Extra
	if ex.FilterSchema == "" && ex.FilterDatabase == "" {
		return items
	}
	var out []Item
	for _, it := range items {
		if ex.FilterSchema != "" && it.SchemaQual != "" && !strings.Contains(strings.ToLower(it.SchemaQual), strings.ToLower(ex.FilterSchema)) {
			continue
		}
		out = append(out, it)
	}
	if out == nil {
		return items
	}
	return out
}

func dedupWithinBand(items []Item) []Item {
	seen := map[string]bool{}
	var out []Item
	for _, it := range items {
		key := fmt.Sprintf("%d:%s", it.Band, strings.ToLower(it.Label))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
