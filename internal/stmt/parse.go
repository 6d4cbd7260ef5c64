package stmt

import (
	"strings"

	"github.com/sadopc/sqlscope/internal/token"
)

// clauseTerminators stop whatever clause region is currently open when
// encountered at depth zero.
var clauseTerminators = map[string]bool{
	"WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true, "SET": true,
	"VALUES": true, "INTO": true, "JOIN": true, "ON": true,
	"WHEN": true, "USING": true,
}

var joinQualifiers = map[string]bool{
	"INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true, "OUTER": true,
}

// parseChunk builds a StatementChunk from one semicolon/batch-delimited
// slice of tokens. base is the slice's offset within the full buffer's
// token sequence (stored for TokenStart/TokenEnd).
func parseChunk(toks []token.Token, base int) *StatementChunk {
	c := newChunk()
	c.TokenStart = base
	c.TokenEnd = base + len(toks)

	pos := 0
	// Skip leading comments for purposes of identifying the leading keyword.
	for pos < len(toks) && isComment(toks[pos]) {
		pos++
	}
	if pos < len(toks) {
		c.Leading = strings.ToUpper(tokenText(toks[pos]))
	}

	if c.Leading == "WITH" {
		pos = parseCTEs(toks, pos+1, c)
		if pos < len(toks) {
			c.Leading = strings.ToUpper(tokenText(toks[pos]))
		}
	}

	walkClauses(toks, pos, c)
	parseTempTables(toks, c)
	return c
}

func isComment(t token.Token) bool {
	return t.Kind == token.LineComment || t.Kind == token.BlockComment
}

// parseCTEs consumes `name (cols)? AS ( body ), name2 AS ( body2 ), ...`
// starting at pos (just after WITH, or after RECURSIVE). Returns the index
// of the first token past the CTE list.
func parseCTEs(toks []token.Token, pos int, c *StatementChunk) int {
	if pos < len(toks) && isKeyword(toks[pos], "RECURSIVE") {
		pos++
	}
	for pos < len(toks) {
		if toks[pos].Kind != token.Identifier && toks[pos].Kind != token.BracketIdentifier {
			break
		}
		name := toks[pos].Unquoted()
		pos++

		var cols []string
		if pos < len(toks) && toks[pos].Kind == token.ParenOpen {
			end := matchParen(toks, pos)
			for i := pos + 1; i < end; i++ {
				if toks[i].Kind == token.Identifier || toks[i].Kind == token.BracketIdentifier {
					cols = append(cols, toks[i].Unquoted())
				}
			}
			pos = end + 1
		}

		if pos < len(toks) && isKeyword(toks[pos], "AS") {
			pos++
		}
		if pos >= len(toks) || toks[pos].Kind != token.ParenOpen {
			break
		}
		end := matchParen(toks, pos)
		body := toks[pos+1 : end]
		bodyChunk := parseChunk(body, pos+1)

		entry := CTEEntry{Columns: cols, Body: bodyChunk}
		if len(entry.Columns) == 0 {
			entry.Columns = selectListColumns(body)
		}
		c.CTEs[strings.ToLower(name)] = entry

		pos = end + 1
		if pos < len(toks) && toks[pos].Kind == token.Comma {
			pos++
			continue
		}
		break
	}
	return pos
}

// selectListColumns does a best-effort extraction of the top-level SELECT
// list's output names: either a bare identifier/bracket-identifier, or the
// identifier following AS, per projected item. Expressions without an
// alias are skipped (no stable name to offer).
func selectListColumns(toks []token.Token) []string {
	depth := 0
	i := 0
	for i < len(toks) && !isKeyword(toks[i], "SELECT") {
		i++
	}
	if i >= len(toks) {
		return nil
	}
	i++
	if i < len(toks) && isKeyword(toks[i], "DISTINCT") {
		i++
	}
	var cols []string
	itemStart := i
	flush := func(end int) {
		item := toks[itemStart:end]
		if len(item) == 0 {
			return
		}
		for j := len(item) - 1; j >= 0; j-- {
			if isKeyword(item[j], "AS") {
				if j+1 < len(item) {
					cols = append(cols, item[j+1].Unquoted())
				}
				return
			}
		}
		last := item[len(item)-1]
		if last.Kind == token.Identifier || last.Kind == token.BracketIdentifier {
			cols = append(cols, last.Unquoted())
		}
	}
	for ; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		case token.Comma:
			if depth == 0 {
				flush(i)
				itemStart = i + 1
			}
		case token.Keyword:
			if depth == 0 && isKeyword(t, "FROM") {
				flush(i)
				return cols
			}
		}
	}
	flush(len(toks))
	return cols
}

// matchParen returns the index of the ParenClose matching the ParenOpen at
// open, or len(toks)-1 when unbalanced (best-effort, spec.md §4.3).
func matchParen(toks []token.Token, open int) int {
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

// walkClauses is the main forward scan that records clause_positions and
// extracts table references, per spec.md §4.3.
func walkClauses(toks []token.Token, pos int, c *StatementChunk) {
	depth := 0
	var openTag string
	var openStart int

	closeOpen := func(endIdx int) {
		if openTag == "" {
			return
		}
		c.Clauses[openTag] = append(c.Clauses[openTag], regionOf(toks[openStart:endIdx]))
		openTag = ""
	}

	i := pos
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case token.ParenOpen:
			depth++
			i++
			continue
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
			i++
			continue
		}
		if depth > 0 {
			i++
			continue
		}

		if t.Kind != token.Keyword {
			i++
			continue
		}
		word := strings.ToUpper(t.Text)

		switch word {
		case "SELECT":
			closeOpen(i)
			openTag, openStart = ClauseSelect, i
			i++
		case "FROM":
			closeOpen(i)
			openTag, openStart = ClauseFrom, i
			i++
			i = parseTableRefList(toks, i, c, false)
		case "JOIN":
			closeOpen(i)
			openTag, openStart = ClauseJoin, i
			i++
			i = parseTableRefList(toks, i, c, true)
		case "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "OUTER":
			i++ // join qualifier, JOIN keyword follows
		case "ON":
			closeOpen(i)
			openTag, openStart = ClauseOn, i
			i++
		case "WHERE":
			closeOpen(i)
			openTag, openStart = ClauseWhere, i
			i++
		case "GROUP":
			closeOpen(i)
			if i+1 < len(toks) && isKeyword(toks[i+1], "BY") {
				i++
			}
			openTag, openStart = ClauseGroupBy, i
			i++
		case "HAVING":
			closeOpen(i)
			openTag, openStart = ClauseHaving, i
			i++
		case "ORDER":
			closeOpen(i)
			if i+1 < len(toks) && isKeyword(toks[i+1], "BY") {
				i++
			}
			openTag, openStart = ClauseOrderBy, i
			i++
		case "SET":
			closeOpen(i)
			openTag, openStart = ClauseSet, i
			i++
		case "VALUES":
			closeOpen(i)
			openTag, openStart = ClauseValues, i
			i++
		case "INTO":
			closeOpen(i)
			openTag, openStart = ClauseInto, i
			i++
			i = parseTableRefListTargetOnly(toks, i, c)
		case "UPDATE":
			i++
			i = parseTableRefListTargetOnly(toks, i, c)
		case "DELETE":
			i++
		case "MERGE":
			i++
			if i < len(toks) && isKeyword(toks[i], "INTO") {
				i++
			}
			i = parseTableRefListTargetOnly(toks, i, c)
		case "USING":
			closeOpen(i)
			openTag, openStart = ClauseUsing, i
			i++
			if i < len(toks) && toks[i].Kind != token.ParenOpen {
				i = parseTableRefList(toks, i, c, false)
			}
		case "WHEN":
			closeOpen(i)
			openTag, openStart = ClauseMergeWhen, i
			i++
		case "UNION", "INTERSECT", "EXCEPT":
			closeOpen(i)
			i++
		case "OUTPUT":
			closeOpen(i)
			openTag, openStart = ClauseOutput, i
			i++
		case "EXEC", "EXECUTE", "USE", "CREATE":
			i++
		default:
			i++
		}
	}
	closeOpen(len(toks))
}

// parseTableRefList consumes one or more comma-separated table references
// starting at i (right after FROM/JOIN/INTO/UPDATE/MERGE INTO/USING),
// stopping at the first clause-terminating keyword, ON, or end of input.
// isJoin disables comma-separated chaining, since a comma after a JOIN's
// table reference belongs to an enclosing FROM list, not this JOIN.
func parseTableRefList(toks []token.Token, i int, c *StatementChunk, isJoin bool) int {
	return parseTableRefListTVF(toks, i, c, isJoin, true)
}

// parseTableRefListTargetOnly is parseTableRefList for a DML target
// position (INSERT INTO / UPDATE / MERGE INTO), where a parenthesized
// group immediately after the name is a column list, never a
// table-valued-function call.
func parseTableRefListTargetOnly(toks []token.Token, i int, c *StatementChunk) int {
	return parseTableRefListTVF(toks, i, c, false, false)
}

func parseTableRefListTVF(toks []token.Token, i int, c *StatementChunk, isJoin, allowTVF bool) int {
	for i < len(toks) {
		for i < len(toks) && isComment(toks[i]) {
			i++
		}
		if i >= len(toks) {
			break
		}
		if toks[i].Kind == token.Keyword && joinQualifiers[strings.ToUpper(toks[i].Text)] {
			return i
		}
		if toks[i].Kind == token.Keyword && clauseTerminators[strings.ToUpper(toks[i].Text)] {
			return i
		}

		if toks[i].Kind == token.ParenOpen {
			end := matchParen(toks, i)
			inner := toks[i+1 : end]
			if startsWithSelect(inner) {
				ref := TableReference{IsSubquery: true, Columns: selectListColumns(inner)}
				sub := parseChunk(inner, i+1)
				j := end + 1
				alias, consumed := parseOptionalAlias(toks, j)
				ref.Alias = alias
				j = consumed
				c.TableRefs = append(c.TableRefs, ref)
				if alias != "" {
					c.Aliases[strings.ToLower(alias)] = ref
				}
				c.Subquery = sub
				i = j
			} else {
				i = end + 1
			}
		} else if toks[i].Kind == token.Identifier || toks[i].Kind == token.BracketIdentifier {
			ref, j := parseNamedRef(toks, i, c, allowTVF)
			c.TableRefs = append(c.TableRefs, ref)
			if ref.Alias != "" {
				c.Aliases[strings.ToLower(ref.Alias)] = ref
			} else {
				c.Aliases[strings.ToLower(ref.Name)] = ref
			}
			i = j
		} else {
			i++
		}

		for i < len(toks) && isComment(toks[i]) {
			i++
		}
		if i < len(toks) && toks[i].Kind == token.Comma && !isJoin {
			i++
			continue
		}
		break
	}
	return i
}

func startsWithSelect(toks []token.Token) bool {
	for _, t := range toks {
		if isComment(t) {
			continue
		}
		return isKeyword(t, "SELECT") || isKeyword(t, "WITH")
	}
	return false
}

// parseNamedRef parses `(db.)?(schema.)?name(alias | AS alias)?` or, when
// allowTVF, `name(...)` (a table-valued function call) starting at i.
// Returns the reference and the index just past it.
func parseNamedRef(toks []token.Token, i int, c *StatementChunk, allowTVF bool) (TableReference, int) {
	var parts []string
	for {
		if i >= len(toks) || (toks[i].Kind != token.Identifier && toks[i].Kind != token.BracketIdentifier) {
			break
		}
		parts = append(parts, toks[i].Unquoted())
		i++
		if i < len(toks) && toks[i].Kind == token.Dot {
			i++
			continue
		}
		break
	}
	ref := TableReference{}
	switch len(parts) {
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Schema, ref.Name = parts[0], parts[1]
	case 3:
		ref.Database, ref.Schema, ref.Name = parts[0], parts[1], parts[2]
	}

	lname := strings.ToLower(ref.Name)
	if entry, ok := c.CTEs[lname]; ok {
		ref.IsCTE = true
		ref.Columns = entry.Columns
	} else if strings.HasPrefix(ref.Name, "#") {
		ref.IsTemp = true
	}

	if allowTVF && i < len(toks) && toks[i].Kind == token.ParenOpen {
		end := matchParen(toks, i)
		ref.IsTVF = true
		i = end + 1
	}

	alias, j := parseOptionalAlias(toks, i)
	ref.Alias = alias
	return ref, j
}

// parseOptionalAlias consumes an optional `AS? identifier` at i, as long as
// the identifier is not itself a clause-opening or join keyword.
func parseOptionalAlias(toks []token.Token, i int) (string, int) {
	if i >= len(toks) {
		return "", i
	}
	if isKeyword(toks[i], "AS") {
		i++
		if i < len(toks) && (toks[i].Kind == token.Identifier || toks[i].Kind == token.BracketIdentifier) {
			return toks[i].Unquoted(), i + 1
		}
		return "", i
	}
	if toks[i].Kind == token.Identifier || toks[i].Kind == token.BracketIdentifier {
		return toks[i].Unquoted(), i + 1
	}
	return "", i
}

// parseTempTables scans the whole chunk for `CREATE TABLE #name (...)` and
// `SELECT ... INTO #name` forms, independent of walkClauses's clause
// tracking (these can appear whether or not the INTO/CREATE path was
// otherwise handled above).
func parseTempTables(toks []token.Token, c *StatementChunk) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.Identifier && t.Kind != token.BracketIdentifier {
			continue
		}
		name := t.Unquoted()
		if !strings.HasPrefix(name, "#") {
			continue
		}
		isGlobal := strings.HasPrefix(name, "##")
		var cols []string
		if i+1 < len(toks) && toks[i+1].Kind == token.ParenOpen {
			end := matchParen(toks, i+1)
			for j := i + 2; j < end; j++ {
				if toks[j].Kind == token.Identifier || toks[j].Kind == token.BracketIdentifier {
					if j == i+2 || toks[j-1].Kind == token.Comma {
						cols = append(cols, toks[j].Unquoted())
					}
				}
			}
		}
		c.TempTables[strings.ToLower(name)] = TempTableEntry{Columns: cols, IsGlobal: isGlobal}
	}
}
