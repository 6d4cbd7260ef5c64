package classify

import (
	"strings"

	"github.com/sadopc/sqlscope/internal/stmt"
	"github.com/sadopc/sqlscope/internal/token"
	"github.com/sadopc/sqlscope/internal/tokenutil"
)

func (p *pipeline) prefixAndTrigger() (string, rune) {
	return tokenutil.ExtractPrefixAndTrigger(p.toks, p.text, p.cursor)
}

// specialCases implements spec.md §4.4 step 2: token-driven rules that do
// not depend on clause positions, tried before clause-driven routing.
func (p *pipeline) specialCases() (CursorContext, bool) {
	if c, ok := p.outputPseudoTable(); ok {
		return c, true
	}
	if c, ok := p.outputInto(); ok {
		return c, true
	}
	if c, ok := p.execProcedure(); ok {
		return c, true
	}
	if c, ok := p.insertColumnList(); ok {
		return c, true
	}
	if c, ok := p.mergeInsertColumnList(); ok {
		return c, true
	}
	if c, ok := p.onClause(); ok {
		return c, true
	}
	return CursorContext{}, false
}

// outputPseudoTable: cursor after INSERTED.│ or DELETED.│.
func (p *pipeline) outputPseudoTable() (CursorContext, bool) {
	ref, ok := tokenutil.ReferenceBeforeDot(p.toks, p.cursor)
	if !ok {
		return CursorContext{}, false
	}
	up := strings.ToUpper(ref)
	if up != "INSERTED" && up != "DELETED" {
		return CursorContext{}, false
	}
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, "output"
	c.Extra.IsOutputClause = true
	c.Extra.OutputPseudoTable = up
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	return c, true
}

// outputInto: cursor after "OUTPUT ... INTO │".
func (p *pipeline) outputInto() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 || !isKeyword(p.toks[idx], "INTO") {
		return CursorContext{}, false
	}
	if !precededByClauseKeyword(p.toks, idx, "OUTPUT") {
		return CursorContext{}, false
	}
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeTable, "into"
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	return c, true
}

// execProcedure: cursor in procedure-name position after EXEC/EXECUTE.
func (p *pipeline) execProcedure() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		return CursorContext{}, false
	}
	if isKeyword(p.toks[idx], "EXEC") || isKeyword(p.toks[idx], "EXECUTE") {
		c := baseContext(p.chunk)
		c.Type, c.Mode = TypeProcedure, "exec"
		c.Prefix, c.Trigger = p.prefixAndTrigger()
		return c, true
	}
	return CursorContext{}, false
}

// insertColumnList: cursor inside the parenthesized column list of
// "INSERT INTO table (...│...)" before any VALUES.
func (p *pipeline) insertColumnList() (CursorContext, bool) {
	if p.chunk == nil || p.chunk.Leading != "INSERT" {
		return CursorContext{}, false
	}
	open, ok := p.enclosingParenOpen()
	if !ok {
		return CursorContext{}, false
	}
	// The token immediately before the opening paren must be the insert
	// target table (optionally qualified), not a function-call identifier
	// preceded by VALUES.
	if open == 0 {
		return CursorContext{}, false
	}
	prev := p.toks[open-1]
	if prev.Kind != token.Identifier && prev.Kind != token.BracketIdentifier {
		return CursorContext{}, false
	}
	if isKeyword(p.toks[open-1], "VALUES") {
		return CursorContext{}, false
	}
	table, schema := p.tableNameEndingAt(open - 1)
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, "insert_columns"
	c.Extra.InsertTable, c.Extra.InsertSchema = table, schema
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	return c, true
}

// mergeInsertColumnList: cursor inside "WHEN NOT MATCHED THEN INSERT (...│...)".
func (p *pipeline) mergeInsertColumnList() (CursorContext, bool) {
	if p.chunk == nil || p.chunk.Leading != "MERGE" {
		return CursorContext{}, false
	}
	open, ok := p.enclosingParenOpen()
	if !ok || open == 0 {
		return CursorContext{}, false
	}
	if !isKeyword(p.toks[open-1], "INSERT") {
		return CursorContext{}, false
	}
	if !precededByClauseKeyword(p.toks, open-1, "THEN") {
		return CursorContext{}, false
	}
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, "merge_insert_columns"
	c.Extra.IsMergeInsert = true
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	return c, true
}

// onClause: cursor sits in a JOIN's ON expression.
func (p *pipeline) onClause() (CursorContext, bool) {
	if p.chunk == nil {
		return CursorContext{}, false
	}
	tag, _, ok := p.chunk.ClauseAt(p.cursor)
	if !ok || tag != stmt.ClauseOn {
		return CursorContext{}, false
	}
	c := baseContext(p.chunk)
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	if ref, ok := tokenutil.ReferenceBeforeDot(p.toks, p.cursor); ok {
		if _, ok := p.chunk.Aliases[strings.ToLower(ref)]; ok {
			c.Type, c.Mode = TypeColumn, "qualified"
			c.Extra.TableRef = ref
			c.Extra.FilterTable = ref
			c.Extra.OmitTable = true
			return c, true
		}
	}
	c.Type, c.Mode = TypeColumn, "on"
	if ls, ok := tokenutil.LeftSideOfComparison(p.toks, p.cursor); ok {
		c.Extra.LeftSide = &ls
	}
	return c, true
}

// clauseDriven implements spec.md §4.4 step 3.
func (p *pipeline) clauseDriven() (CursorContext, bool) {
	if p.chunk == nil {
		return CursorContext{}, false
	}
	tag, _, ok := p.chunk.ClauseAt(p.cursor)
	if !ok {
		return CursorContext{}, false
	}
	switch tag {
	case stmt.ClauseSelect:
		return p.columnContext("select"), true
	case stmt.ClauseFrom:
		return p.tableContext("from"), true
	case stmt.ClauseJoin:
		return p.tableContext("join"), true
	case stmt.ClauseWhere:
		if c, ok := p.unparsedSubqueryInWhere(); ok {
			return c, true
		}
		return p.columnContext("where"), true
	case stmt.ClauseGroupBy:
		return p.columnContext("group_by"), true
	case stmt.ClauseHaving:
		if c, ok := p.unparsedSubqueryInWhere(); ok {
			return c, true
		}
		return p.columnContext("having"), true
	case stmt.ClauseOrderBy:
		return p.columnContext("order_by"), true
	case stmt.ClauseSet:
		return p.setContext()
	case stmt.ClauseInto:
		return p.tableContext("into"), true
	case stmt.ClauseValues:
		return p.valuesContext()
	}
	return CursorContext{}, false
}

// unparsedSubqueryInWhere: backward scan for an unparsed "(SELECT ..."
// enclosing the cursor, not preceded by an identifier (function call) or
// AS (CTE body).
func (p *pipeline) unparsedSubqueryInWhere() (CursorContext, bool) {
	open, ok := p.enclosingParenOpen()
	if !ok {
		return CursorContext{}, false
	}
	if !startsWithSelectOrWith(p.toks, open+1) {
		return CursorContext{}, false
	}
	if open > 0 {
		prev := p.toks[open-1]
		if prev.Kind == token.Identifier || prev.Kind == token.BracketIdentifier {
			return CursorContext{}, false
		}
		if isKeyword(prev, "AS") {
			return CursorContext{}, false
		}
	}
	end := matchingParenClose(p.toks, open)
	tables := extractForwardFromTables(p.toks, open+1, end)

	// Fall through to token-based detection inside the subquery: if a FROM
	// already appeared before the cursor (within the subquery), the cursor
	// is in table position; otherwise it is still in the SELECT list.
	var c CursorContext
	if tc, ok := p.tokenBasedTable(); ok {
		c = tc
	} else {
		c = p.columnContext("select")
	}
	c.SubqueryTables = tables
	return c, true
}

func startsWithSelectOrWith(toks []token.Token, i int) bool {
	for ; i < len(toks); i++ {
		if toks[i].Kind == token.LineComment || toks[i].Kind == token.BlockComment {
			continue
		}
		return isKeyword(toks[i], "SELECT") || isKeyword(toks[i], "WITH")
	}
	return false
}

// extractForwardFromTables does a minimal forward scan for FROM ... table
// references inside [start, end), for contexts where the nested subquery
// was never handed its own StatementChunk (it was "unparsed").
func extractForwardFromTables(toks []token.Token, start, end int) []stmt.TableReference {
	var refs []stmt.TableReference
	depth := 0
	for i := start; i < end; i++ {
		t := toks[i]
		switch t.Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && isKeyword(t, "FROM") {
			j := i + 1
			for j < end && (toks[j].Kind == token.Identifier || toks[j].Kind == token.BracketIdentifier || toks[j].Kind == token.Dot || toks[j].Kind == token.Comma) {
				if toks[j].Kind == token.Identifier || toks[j].Kind == token.BracketIdentifier {
					name := toks[j].Unquoted()
					// peek optional alias
					alias := ""
					if j+1 < end && (toks[j+1].Kind == token.Identifier || toks[j+1].Kind == token.BracketIdentifier) {
						alias = toks[j+1].Unquoted()
						j++
					}
					refs = append(refs, stmt.TableReference{Name: name, Alias: alias})
				}
				j++
			}
		}
	}
	return refs
}

// continuation implements spec.md §4.4 step 4.
func (p *pipeline) continuation() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		return CursorContext{}, false
	}
	t := p.toks[idx]
	if isKeyword(t, "FROM") {
		return p.tableContext("from"), true
	}
	if isKeyword(t, "JOIN") {
		return p.tableContext("join"), true
	}
	if t.Kind == token.Keyword && joinQualifierWord(t.Text) {
		return p.tableContext("join"), true
	}
	if t.Kind == token.Comma && p.unterminatedFromList(idx) {
		return p.tableContext("from"), true
	}
	return CursorContext{}, false
}

func joinQualifierWord(s string) bool {
	switch strings.ToUpper(s) {
	case "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "OUTER":
		return true
	}
	return false
}

// unterminatedFromList: a best-effort check that the nearest enclosing
// clause at depth 0 up to idx is FROM (not, say, a column list or VALUES
// tuple using commas for other purposes).
func (p *pipeline) unterminatedFromList(commaIdx int) bool {
	if p.chunk == nil {
		return false
	}
	for _, r := range p.chunk.Clauses[stmt.ClauseFrom] {
		pos := tokenutil.Pos{Line: p.toks[commaIdx].Line, Col: p.toks[commaIdx].Col}
		if r.ContainsCursor(pos) {
			return true
		}
	}
	return false
}

// aliasDisambiguation implements spec.md §4.4 step 5.
func (p *pipeline) aliasDisambiguation() (CursorContext, bool) {
	if p.chunk == nil {
		return CursorContext{}, false
	}
	ref, ok := tokenutil.ReferenceBeforeDot(p.toks, p.cursor)
	if !ok {
		return CursorContext{}, false
	}
	if _, ok := p.chunk.Aliases[strings.ToLower(ref)]; !ok {
		return CursorContext{}, false
	}
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, "qualified"
	c.Extra.TableRef = ref
	c.Extra.FilterTable = ref
	c.Extra.OmitTable = true
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	return c, true
}

// tokenBasedTable implements spec.md §4.4 step 6.
func (p *pipeline) tokenBasedTable() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		return CursorContext{}, false
	}
	for i := idx; i >= 0; i-- {
		t := p.toks[i]
		if t.Kind != token.Keyword {
			continue
		}
		w := strings.ToUpper(t.Text)
		switch w {
		case "FROM", "JOIN", "INTO", "UPDATE", "DELETE", "MERGE", "USING":
			return p.tableContext(tableModeFor(w)), true
		}
		break
	}
	return CursorContext{}, false
}

func tableModeFor(w string) string {
	switch w {
	case "FROM":
		return "from"
	case "JOIN":
		return "join"
	case "INTO":
		return "into"
	case "UPDATE":
		return "update"
	case "DELETE":
		return "delete"
	case "MERGE":
		return "merge"
	case "USING":
		return "merge"
	}
	return "from"
}

// tokenBasedColumn implements spec.md §4.4 step 7.
func (p *pipeline) tokenBasedColumn() (CursorContext, bool) {
	if p.chunk == nil {
		return CursorContext{}, false
	}
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		return CursorContext{}, false
	}
	for i := idx; i >= 0; i-- {
		t := p.toks[i]
		if t.Kind != token.Keyword {
			continue
		}
		w := strings.ToUpper(t.Text)
		switch w {
		case "SELECT", "WHERE", "HAVING", "SET", "OUTPUT":
			return p.columnContext(strings.ToLower(w)), true
		case "AND", "OR":
			continue
		}
		return CursorContext{}, false
	}
	return CursorContext{}, false
}

// subquerySelect implements spec.md §4.4 step 9: "( SELECT │" with no
// FROM yet.
func (p *pipeline) subquerySelect() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 || !isKeyword(p.toks[idx], "SELECT") {
		return CursorContext{}, false
	}
	if idx == 0 || p.toks[idx-1].Kind != token.ParenOpen {
		return CursorContext{}, false
	}
	return p.columnContext("select"), true
}

// databaseSchema implements spec.md §4.4 step 10.
func (p *pipeline) databaseSchema() (CursorContext, bool) {
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		return CursorContext{}, false
	}
	// USE is a keyword only in some dialects' keyword sets; elsewhere it
	// lexes as an identifier.
	if t := p.toks[idx]; (t.Kind == token.Keyword || t.Kind == token.Identifier) && strings.EqualFold(t.Text, "USE") {
		c := baseContext(p.chunk)
		c.Type, c.Mode = TypeDatabase, "use"
		c.Prefix, c.Trigger = p.prefixAndTrigger()
		return c, true
	}
	if q, triggered := tokenutil.DotTriggered(p.toks, p.cursor); triggered && len(q.Parts) == 1 {
		c := baseContext(p.chunk)
		c.Type, c.Mode = TypeSchema, "dangling"
		c.Extra.Database = q.Parts[0]
		c.Prefix, c.Trigger = p.prefixAndTrigger()
		return c, true
	}
	return CursorContext{}, false
}

// keywordFallback implements spec.md §4.4 step 11.
func (p *pipeline) keywordFallback() CursorContext {
	c := baseContext(p.chunk)
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	if idx < 0 {
		c.Type, c.Mode = TypeKeyword, "start"
		return c
	}
	t := p.toks[idx]
	if t.Kind == token.Semicolon || t.Kind == token.BatchSeparator {
		c.Type, c.Mode = TypeKeyword, "start"
		return c
	}
	c.Type, c.Mode = TypeKeyword, "general"
	return c
}

// --- shared helpers ---

func isKeyword(t token.Token, word string) bool {
	return t.Kind == token.Keyword && strings.EqualFold(t.Text, word)
}

// precededByClauseKeyword reports whether, scanning backward from idx at
// paren-depth 0, the nearest clause-shaped keyword is word.
func precededByClauseKeyword(toks []token.Token, idx int, word string) bool {
	depth := 0
	for i := idx - 1; i >= 0; i-- {
		switch toks[i].Kind {
		case token.ParenClose:
			depth++
		case token.ParenOpen:
			if depth > 0 {
				depth--
			} else {
				return false
			}
		}
		if depth == 0 && toks[i].Kind == token.Keyword {
			return isKeyword(toks[i], word)
		}
	}
	return false
}

// enclosingParenOpen returns the index of the nearest unmatched ParenOpen
// before cursor, i.e. the paren the cursor is currently nested inside.
func (p *pipeline) enclosingParenOpen() (int, bool) {
	depth := 0
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	for i := idx; i >= 0; i-- {
		switch p.toks[i].Kind {
		case token.ParenClose:
			depth++
		case token.ParenOpen:
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return 0, false
}

func matchingParenClose(toks []token.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

// tableNameEndingAt reads a (schema.)?table path ending at index idx
// (inclusive), walking backward over Dot/Identifier pairs.
func (p *pipeline) tableNameEndingAt(idx int) (table, schema string) {
	if idx < 0 || (p.toks[idx].Kind != token.Identifier && p.toks[idx].Kind != token.BracketIdentifier) {
		return "", ""
	}
	table = p.toks[idx].Unquoted()
	if idx >= 2 && p.toks[idx-1].Kind == token.Dot {
		if p.toks[idx-2].Kind == token.Identifier || p.toks[idx-2].Kind == token.BracketIdentifier {
			schema = p.toks[idx-2].Unquoted()
		}
	}
	return table, schema
}

// columnContext builds a (column, mode) context, extracting left_side and
// qualified-column forms where applicable.
func (p *pipeline) columnContext(mode string) CursorContext {
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, mode
	c.Prefix, c.Trigger = p.prefixAndTrigger()

	if ref, ok := tokenutil.ReferenceBeforeDot(p.toks, p.cursor); ok {
		c.Mode = "qualified"
		c.Extra.TableRef = ref
		c.Extra.FilterTable = ref
		c.Extra.OmitTable = true
		return c
	}
	if ls, ok := tokenutil.LeftSideOfComparison(p.toks, p.cursor); ok {
		c.Extra.LeftSide = &ls
	}
	return c
}

// tableContext builds a (table, mode) context, extracting qualification
// (schema/database prefixes) per spec.md §4.4 step 6.
func (p *pipeline) tableContext(mode string) CursorContext {
	c := baseContext(p.chunk)
	c.Type = TypeTable
	c.Mode = mode
	c.Prefix, c.Trigger = p.prefixAndTrigger()

	q, triggered := tokenutil.DotTriggered(p.toks, p.cursor)
	if !triggered || len(q.Parts) == 0 {
		return c
	}
	switch len(q.Parts) {
	case 2:
		c.Mode = mode + "_cross_db_qualified"
		c.Extra.FilterDatabase = q.Parts[0]
		c.Extra.FilterSchema = q.Parts[1]
		c.Extra.OmitSchema = true
	case 1:
		c.Mode = mode + "_qualified"
		c.Extra.FilterSchema = q.Parts[0]
		c.Extra.OmitSchema = true
		c.Extra.PotentialDatabase = q.Parts[0]
	}
	return c
}

// setContext distinguishes UPDATE ... SET target-column position from
// SET target = │value position by checking whether the token just before
// the cursor is a comparison operator such as `=` with a column name
// before it (tokenutil.LeftSideOfComparison).
func (p *pipeline) setContext() (CursorContext, bool) {
	c := baseContext(p.chunk)
	c.Prefix, c.Trigger = p.prefixAndTrigger()
	if ls, ok := tokenutil.LeftSideOfComparison(p.toks, p.cursor); ok {
		c.Type, c.Mode = TypeColumn, "set_value"
		c.Extra.LeftSide = &ls
		return c, true
	}
	c.Type, c.Mode = TypeColumn, "set"
	return c, true
}

// valuesContext implements the VALUES sub-mode (spec.md §4.4 step 8),
// computing value_position as the 0-based comma count since the last
// depth-1 opening paren.
func (p *pipeline) valuesContext() (CursorContext, bool) {
	c := baseContext(p.chunk)
	c.Type, c.Mode = TypeColumn, "values"
	c.Prefix, c.Trigger = p.prefixAndTrigger()

	open, ok := p.enclosingParenOpen()
	if !ok {
		return c, true
	}
	idx := tokenutil.IndexBefore(p.toks, p.cursor)
	count := 0
	depth := 0
	for i := open + 1; i <= idx; i++ {
		switch p.toks[i].Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		case token.Comma:
			if depth == 0 {
				count++
			}
		}
	}
	c.Extra.ValuePosition = count

	if p.chunk != nil && p.chunk.Leading == "INSERT" {
		for _, ref := range p.chunk.TableRefs {
			c.Extra.InsertTable = ref.Name
			c.Extra.InsertSchema = ref.Schema
			break
		}
	}
	return c, true
}
