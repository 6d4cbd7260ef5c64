// Package tokenutil implements pure, stateless functions over an immutable
// token sequence and a (line, col) cursor position (spec.md §4.2). Every
// function here is synchronous and touches nothing but its arguments.
package tokenutil

import "github.com/sadopc/sqlscope/internal/token"

// Pos is a 1-based (line, col) buffer position.
type Pos struct {
	Line int
	Col  int
}

// Compare returns -1, 0, or 1 as a is before, equal to, or after b in
// line-major order.
func Compare(a, b Pos) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	switch {
	case a.Col < b.Col:
		return -1
	case a.Col > b.Col:
		return 1
	default:
		return 0
	}
}

func startOf(t token.Token) Pos { return Pos{Line: t.Line, Col: t.Col} }

func endOf(t token.Token) Pos {
	line, col := t.End()
	return Pos{Line: line, Col: col}
}

// TokenAt returns the token whose span contains cursor, if any.
func TokenAt(toks []token.Token, cursor Pos) (token.Token, bool) {
	for _, t := range toks {
		if Compare(startOf(t), cursor) <= 0 && Compare(cursor, endOf(t)) < 0 {
			return t, true
		}
	}
	return token.Token{}, false
}

// TokenAtOrAfter returns the token at cursor, or failing that the first
// token whose start is at or after cursor. Returns false if cursor is past
// every token.
func TokenAtOrAfter(toks []token.Token, cursor Pos) (token.Token, bool) {
	if t, ok := TokenAt(toks, cursor); ok {
		return t, true
	}
	for _, t := range toks {
		if Compare(startOf(t), cursor) >= 0 {
			return t, true
		}
	}
	return token.Token{}, false
}

// IndexBefore returns the index of the last token that starts strictly
// before cursor, or -1 if none.
func IndexBefore(toks []token.Token, cursor Pos) int {
	idx := -1
	for i, t := range toks {
		if Compare(startOf(t), cursor) < 0 {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// BackwardWindow returns up to n tokens strictly before cursor, nearest
// first (reverse buffer order), per spec.md §4.2 "Backward window".
func BackwardWindow(toks []token.Token, cursor Pos, n int) []token.Token {
	idx := IndexBefore(toks, cursor)
	if idx < 0 {
		return nil
	}
	start := idx - n + 1
	if start < 0 {
		start = 0
	}
	window := make([]token.Token, 0, idx-start+1)
	for i := idx; i >= start; i-- {
		window = append(window, toks[i])
	}
	return window
}

// InsideStringOrComment reports whether cursor lies strictly inside a
// string/line-comment/block-comment token, per spec.md §4.2.
func InsideStringOrComment(toks []token.Token, cursor Pos) bool {
	t, ok := TokenAt(toks, cursor)
	if !ok {
		return false
	}
	switch t.Kind {
	case token.String, token.LineComment, token.BlockComment:
		// "Strictly inside": at the opening delimiter position the cursor
		// is considered not-yet-inside so triggering characters there still
		// classify normally.
		return Compare(cursor, startOf(t)) > 0
	default:
		return false
	}
}

// ParenDepthAt computes the net paren depth of the token window
// [0, cursor), i.e. how many unmatched '(' precede cursor at top level of
// the scanned window. Callers pass the slice already restricted to the
// statement or region they care about (spec.md §4.2: "paren-depth aware
// where the spec says so").
func ParenDepthAt(toks []token.Token, cursor Pos) int {
	depth := 0
	for _, t := range toks {
		if Compare(startOf(t), cursor) >= 0 {
			break
		}
		switch t.Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}
