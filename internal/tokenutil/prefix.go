package tokenutil

import (
	"strings"
	"unicode/utf8"

	"github.com/sadopc/sqlscope/internal/token"
)

// ExtractPrefixAndTrigger returns the partial identifier currently under (or
// immediately before) cursor and the trigger character that induced
// completion, per spec.md §4.2. Trigger is one of '.', ' ', '\t', '\n',
// a single quote, a double quote, or 0 (none) when the request was invoked explicitly rather than by typing a
// triggering character.
func ExtractPrefixAndTrigger(toks []token.Token, text string, cursor Pos) (prefix string, trigger rune) {
	byteOffset := byteOffsetFor(text, cursor)
	if byteOffset < 0 || byteOffset > len(text) {
		return "", 0
	}

	// Find the run of identifier characters ending at byteOffset.
	start := byteOffset
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	prefix = text[start:byteOffset]

	if start == 0 {
		return prefix, 0
	}
	trigger = rune(text[start-1])
	switch trigger {
	case '.', ' ', '\t', '\n', '\'', '"':
		return prefix, trigger
	default:
		return prefix, 0
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b >= 0x80
}

// byteOffsetFor converts a 1-based (line, col) into a byte offset into text.
// col is a rune (not byte) column, matching Token.Col's convention.
func byteOffsetFor(text string, cursor Pos) int {
	line, col := 1, 1
	for i := 0; i < len(text); {
		if line == cursor.Line && col == cursor.Col {
			return i
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	if line == cursor.Line && col == cursor.Col {
		return len(text)
	}
	return -1
}

// NormalizedPrefix is a convenience used by resolver/assembler code that
// needs a case-insensitive comparison key.
func NormalizedPrefix(prefix string) string {
	return strings.ToLower(prefix)
}
