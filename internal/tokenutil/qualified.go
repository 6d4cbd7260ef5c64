package tokenutil

import "github.com/sadopc/sqlscope/internal/token"

// QualifiedName is produced when the tokens before the cursor form a dotted
// path (spec.md §3). Parts are ordered left to right; interpretation is
// position-sensitive (one part is ambiguous schema-or-table-or-alias, two
// parts are schema.table or database.schema, three parts are
// database.schema.table).
type QualifiedName struct {
	Parts          []string
	Database       string
	Schema         string
	Table          string
	Alias          string
	HasTrailingDot bool
}

// Database, Schema, Table and Alias are populated by InterpretAsTablePath
// or InterpretAsColumnPath once the caller knows
// which position scheme applies (table-producing vs column-producing
// context); QualifiedName itself stays neutral about that choice so the
// classifier can decide (spec.md §9, "ambiguity: two-part qualified name").

// InterpretAsTablePath fills Database/Schema/Table assuming parts name a
// table path: 1 part -> Table, 2 parts -> Schema.Table, 3 parts ->
// Database.Schema.Table.
func (q *QualifiedName) InterpretAsTablePath() {
	switch len(q.Parts) {
	case 1:
		q.Table = q.Parts[0]
	case 2:
		q.Schema, q.Table = q.Parts[0], q.Parts[1]
	case 3:
		q.Database, q.Schema, q.Table = q.Parts[0], q.Parts[1], q.Parts[2]
	}
}

// InterpretAsColumnPath fills Alias/Table and leaves the last part as the
// column prefix is handled by the caller; 1 part -> Alias (or Table), 2
// parts -> Schema.Table (rare, column access through a schema-qualified
// view is not typical but tolerated).
func (q *QualifiedName) InterpretAsColumnPath() {
	switch len(q.Parts) {
	case 1:
		q.Alias = q.Parts[0]
	case 2:
		q.Schema, q.Alias = q.Parts[0], q.Parts[1]
	}
}

// DotTriggered scans backward from cursor while seeing
// identifier/bracket-identifier/dot tokens, stopping at anything else. It
// returns the parsed QualifiedName and true when the last scanned element is
// a dot or the cursor sits immediately after a dot (spec.md §4.2
// "Dot-triggered?"); otherwise it returns whatever was parsed and false.
func DotTriggered(toks []token.Token, cursor Pos) (QualifiedName, bool) {
	idx := IndexBefore(toks, cursor)
	// A token under the cursor itself (partial identifier being typed)
	// participates in the scan too, but its text is a prefix, not a
	// completed part; callers use ExtractPrefixAndTrigger for that text and
	// call DotTriggered on the position right before that partial token.
	var parts []string
	lastWasDot := false
	triggeredByImmediateDot := false

	i := idx
	for i >= 0 {
		t := toks[i]
		switch t.Kind {
		case token.Identifier, token.BracketIdentifier:
			parts = append(parts, t.Unquoted())
			lastWasDot = false
			i--
		case token.Dot:
			lastWasDot = true
			i--
		default:
			i = -1
		}
		if i < 0 {
			break
		}
	}

	// Reverse parts into left-to-right order.
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}

	if idx >= 0 && toks[idx].Kind == token.Dot {
		triggeredByImmediateDot = true
	}

	q := QualifiedName{Parts: parts, HasTrailingDot: lastWasDot || triggeredByImmediateDot}
	return q, lastWasDot || triggeredByImmediateDot
}

// ReferenceBeforeDot returns the identifier immediately preceding the dot
// the cursor sits on, for patterns like "alias.│column" — used when the
// classifier needs just the alias/table name, not a full QualifiedName.
func ReferenceBeforeDot(toks []token.Token, cursor Pos) (string, bool) {
	idx := IndexBefore(toks, cursor)
	if idx < 0 || toks[idx].Kind != token.Dot {
		return "", false
	}
	if idx == 0 {
		return "", false
	}
	prev := toks[idx-1]
	if prev.Kind == token.Identifier || prev.Kind == token.BracketIdentifier {
		return prev.Unquoted(), true
	}
	return "", false
}
