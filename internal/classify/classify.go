// Package classify implements the cursor-context classifier (spec.md §4.4):
// a fixed, ordered, synchronous pipeline from (buffer, statement chunks,
// cursor) to a CursorContext. It never blocks and never touches metadata.
package classify

import (
	"github.com/sadopc/sqlscope/internal/stmt"
	"github.com/sadopc/sqlscope/internal/token"
	"github.com/sadopc/sqlscope/internal/tokenutil"
)

// Type is the kind of thing the cursor is positioned to complete.
type Type string

const (
	TypeUnknown   Type = "unknown"
	TypeKeyword   Type = "keyword"
	TypeDatabase  Type = "database"
	TypeSchema    Type = "schema"
	TypeTable     Type = "table"
	TypeColumn    Type = "column"
	TypeProcedure Type = "procedure"
	TypeParameter Type = "parameter"
	TypeAlias     Type = "alias"
)

// Extra carries the filter hints spec.md §3 groups under CursorContext.extra.
type Extra struct {
	TableRef          string
	FilterTable       string
	FilterSchema      string
	FilterDatabase    string
	OmitSchema        bool
	OmitTable         bool
	Schema            string
	Database          string
	PotentialDatabase string
	LeftSide          *tokenutil.LeftSide
	ValuePosition     int
	InsertTable       string
	InsertSchema      string
	IsOutputClause    bool
	OutputPseudoTable string
	IsMergeInsert     bool
}

// CursorContext is the classifier's output (spec.md §3).
type CursorContext struct {
	Type           Type
	Mode           string
	Prefix         string
	Trigger        rune
	ShouldComplete bool
	Extra          Extra

	TablesInScope  []stmt.TableReference
	Aliases        map[string]stmt.TableReference
	CTEs           map[string]stmt.CTEEntry
	TempTables     map[string]stmt.TempTableEntry
	SubqueryTables []stmt.TableReference
}

func baseContext(chunk *stmt.StatementChunk) CursorContext {
	c := CursorContext{
		ShouldComplete: true,
		Aliases:        map[string]stmt.TableReference{},
		CTEs:           map[string]stmt.CTEEntry{},
		TempTables:     map[string]stmt.TempTableEntry{},
	}
	if chunk != nil {
		c.TablesInScope = chunk.TableRefs
		c.Aliases = chunk.Aliases
		c.CTEs = chunk.CTEs
		c.TempTables = chunk.TempTables
	}
	return c
}

// pipeline carries the shared inputs threaded through every stage.
type pipeline struct {
	text    string
	toks    []token.Token
	chunks  []*stmt.StatementChunk
	cursor  tokenutil.Pos
	chunk   *stmt.StatementChunk // enclosing chunk, nil if cursor is past everything
	dialect token.Dialect
}

// Classify runs the ordered classification pipeline described in
// spec.md §4.4 and returns its first non-empty result.
func Classify(text string, toks []token.Token, chunks []*stmt.StatementChunk, d token.Dialect, cursor tokenutil.Pos) CursorContext {
	p := &pipeline{text: text, toks: toks, chunks: chunks, cursor: cursor, dialect: d}
	p.chunk = enclosingChunk(chunks, cursor)

	if tokenutil.InsideStringOrComment(toks, cursor) {
		c := baseContext(p.chunk)
		c.Type, c.Mode, c.ShouldComplete = TypeUnknown, insideMode(toks, cursor), false
		return c
	}

	if c, ok := p.specialCases(); ok {
		return c
	}
	if c, ok := p.clauseDriven(); ok {
		return c
	}
	if c, ok := p.continuation(); ok {
		return c
	}
	if c, ok := p.aliasDisambiguation(); ok {
		return c
	}
	if c, ok := p.tokenBasedTable(); ok {
		return c
	}
	if c, ok := p.tokenBasedColumn(); ok {
		return c
	}
	if c, ok := p.subquerySelect(); ok {
		return c
	}
	if c, ok := p.databaseSchema(); ok {
		return c
	}
	return p.keywordFallback()
}

func insideMode(toks []token.Token, cursor tokenutil.Pos) string {
	t, _ := tokenutil.TokenAt(toks, cursor)
	if t.Kind == token.String {
		return "string"
	}
	return "comment"
}

// enclosingChunk finds the first chunk with a clause region containing
// cursor, descending into its nested subquery chunk when one of that
// chunk's clause regions contains cursor. When no chunk's clause regions
// contain cursor, it returns the last chunk.
func enclosingChunk(chunks []*stmt.StatementChunk, cursor tokenutil.Pos) *stmt.StatementChunk {
	for _, c := range chunks {
		if chunkContains(c, cursor) {
			if c.Subquery != nil && chunkContains(c.Subquery, cursor) {
				return c.Subquery
			}
			return c
		}
	}
	if len(chunks) > 0 {
		return chunks[len(chunks)-1]
	}
	return nil
}

func chunkContains(c *stmt.StatementChunk, cursor tokenutil.Pos) bool {
	for _, regions := range c.Clauses {
		for _, r := range regions {
			if r.ContainsCursor(cursor) {
				return true
			}
		}
	}
	return false
}
