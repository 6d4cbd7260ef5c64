// Package stmt splits a tokenized buffer into statement chunks and records
// clause positions and table references within each chunk (spec.md §4.3).
// Parsing here is deliberately shallow: it locates clause boundaries and
// table references well enough to drive completion, not a full grammar.
package stmt

import (
	"github.com/sadopc/sqlscope/internal/token"
	"github.com/sadopc/sqlscope/internal/tokenutil"
)

// Clause tags used as keys into StatementChunk.Clauses.
const (
	ClauseSelect        = "select"
	ClauseFrom          = "from"
	ClauseJoin          = "join"
	ClauseOn            = "on"
	ClauseWhere         = "where"
	ClauseGroupBy       = "group_by"
	ClauseHaving        = "having"
	ClauseOrderBy       = "order_by"
	ClauseSet           = "set"
	ClauseValues        = "values"
	ClauseInto          = "into"
	ClauseInsertColumns = "insert_columns"
	ClauseUsing         = "using"
	ClauseMergeWhen     = "merge_when"
	ClauseMergeInsert   = "merge_insert"
	ClauseOutput        = "output"
)

// Region is a byte/line span in buffer coordinates.
type Region struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

func (r Region) Contains(p tokenutil.Pos) bool {
	start := tokenutil.Pos{Line: r.StartLine, Col: r.StartCol}
	end := tokenutil.Pos{Line: r.EndLine, Col: r.EndCol}
	return tokenutil.Compare(start, p) <= 0 && tokenutil.Compare(p, end) < 0
}

// ContainsCursor is like Contains but treats the region's end as inclusive,
// since a completion request's cursor commonly sits immediately after the
// last character typed so far (i.e. exactly at the region's recorded end).
func (r Region) ContainsCursor(p tokenutil.Pos) bool {
	start := tokenutil.Pos{Line: r.StartLine, Col: r.StartCol}
	end := tokenutil.Pos{Line: r.EndLine, Col: r.EndCol}
	return tokenutil.Compare(start, p) <= 0 && tokenutil.Compare(p, end) <= 0
}

// TableReference is an entry in a statement's FROM/JOIN/INTO/UPDATE/DELETE
// targets (spec.md §3).
type TableReference struct {
	Name       string
	Schema     string
	Database   string
	Alias      string
	IsCTE      bool
	IsTemp     bool
	IsSubquery bool
	IsTVF      bool
	Columns    []string // populated for CTE/subquery references when known
}

// CTEEntry describes one WITH-clause common table expression.
type CTEEntry struct {
	Columns []string
	Body    *StatementChunk
}

// TempTableEntry describes a #temp or ##global temp table declared in the
// buffer.
type TempTableEntry struct {
	Columns  []string
	IsGlobal bool
}

// StatementChunk is one statement in the buffer (spec.md §3).
type StatementChunk struct {
	TokenStart, TokenEnd int // indices into the full token slice, [start, end)
	Leading              string
	Clauses              map[string][]Region
	TableRefs            []TableReference
	Aliases              map[string]TableReference // lowercased alias -> ref
	CTEs                 map[string]CTEEntry        // lowercased name -> entry
	TempTables           map[string]TempTableEntry  // lowercased name -> entry
	Subquery             *StatementChunk            // non-nil if parser descended into a nested subquery
	UnbalancedParens     bool
}

func newChunk() *StatementChunk {
	return &StatementChunk{
		Clauses:    make(map[string][]Region),
		Aliases:    make(map[string]TableReference),
		CTEs:       make(map[string]CTEEntry),
		TempTables: make(map[string]TempTableEntry),
	}
}

// ClauseAt returns the clause tag whose region contains p, within chunk c,
// and whether one was found. If multiple clauses somehow match (should not
// happen per the non-overlap invariant) the first encountered wins.
func (c *StatementChunk) ClauseAt(p tokenutil.Pos) (string, Region, bool) {
	for tag, regions := range c.Clauses {
		for _, r := range regions {
			if r.ContainsCursor(p) {
				return tag, r, true
			}
		}
	}
	return "", Region{}, false
}

// Parse splits toks into statement chunks (spec.md §4.3). Batch separators
// (the BatchSeparator token kind, e.g. a lone GO on sqlserver) are already
// dialect-tagged by the tokenizer, so Parse itself is dialect-agnostic.
func Parse(toks []token.Token) []*StatementChunk {
	var chunks []*StatementChunk
	start := 0
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		}
		isBatchBoundary := depth == 0 && (t.Kind == token.Semicolon || t.Kind == token.BatchSeparator)
		if isBatchBoundary {
			if i > start {
				chunks = append(chunks, parseChunk(toks[start:i], start))
			}
			start = i + 1
		}
	}
	if start < len(toks) {
		chunks = append(chunks, parseChunk(toks[start:], start))
	}
	return chunks
}

func tokenText(t token.Token) string {
	return token.Unquote(t.Text)
}

func isKeyword(t token.Token, word string) bool {
	return t.Kind == token.Keyword && equalFold(t.Text, word)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func regionOf(toks []token.Token) Region {
	if len(toks) == 0 {
		return Region{}
	}
	first := toks[0]
	last := toks[len(toks)-1]
	endLine, endCol := last.End()
	return Region{StartLine: first.Line, StartCol: first.Col, EndLine: endLine, EndCol: endCol}
}
