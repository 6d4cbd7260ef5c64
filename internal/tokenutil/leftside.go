package tokenutil

import (
	"strings"

	"github.com/sadopc/sqlscope/internal/token"
)

// LeftSide is the identifier (optionally alias-qualified) found on the left
// of a comparison operator, e.g. in "alias.col = │" or "col IN (│".
type LeftSide struct {
	Alias  string // empty when unqualified
	Column string
}

var comparisonOps = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
}

func isComparisonOperator(t token.Token) bool {
	if t.Kind == token.Operator && comparisonOps[t.Text] {
		return true
	}
	if t.Kind == token.Keyword {
		up := strings.ToUpper(t.Text)
		return up == "LIKE" || up == "IN"
	}
	return false
}

// LeftSideOfComparison walks backward from cursor looking for
// "identifier OP │" (spec.md §4.2). If found and the identifier is
// "alias.col", both are returned; otherwise just the column.
func LeftSideOfComparison(toks []token.Token, cursor Pos) (LeftSide, bool) {
	idx := IndexBefore(toks, cursor)
	if idx < 0 {
		return LeftSide{}, false
	}
	if !isComparisonOperator(toks[idx]) {
		return LeftSide{}, false
	}
	opIdx := idx
	if opIdx == 0 {
		return LeftSide{}, false
	}
	// identifier immediately before the operator
	idIdx := opIdx - 1
	if toks[idIdx].Kind != token.Identifier && toks[idIdx].Kind != token.BracketIdentifier {
		return LeftSide{}, false
	}
	col := toks[idIdx].Unquoted()

	// Check for alias.col: a dot then another identifier before that.
	if idIdx >= 2 && toks[idIdx-1].Kind == token.Dot {
		aliasIdx := idIdx - 2
		if toks[aliasIdx].Kind == token.Identifier || toks[aliasIdx].Kind == token.BracketIdentifier {
			return LeftSide{Alias: toks[aliasIdx].Unquoted(), Column: col}, true
		}
	}
	return LeftSide{Column: col}, true
}
