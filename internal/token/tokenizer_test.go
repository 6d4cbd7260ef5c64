package token

import "testing"

func TestTokenize_Basic(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want []Kind
	}{
		{
			name: "simple select",
			sql:  "SELECT a, b FROM t",
			want: []Kind{Keyword, Identifier, Comma, Identifier, Keyword, Identifier},
		},
		{
			name: "qualified dot path",
			sql:  "t.col",
			want: []Kind{Identifier, Dot, Identifier},
		},
		{
			name: "string literal",
			sql:  "WHERE x = 'it''s fine'",
			want: []Kind{Keyword, Identifier, Operator, String},
		},
		{
			name: "line comment",
			sql:  "SELECT 1 -- trailing\nFROM t",
			want: []Kind{Keyword, Number, LineComment, Keyword, Identifier},
		},
		{
			name: "nested block comment",
			sql:  "/* outer /* inner */ still */ SELECT 1",
			want: []Kind{BlockComment, Keyword, Number},
		},
		{
			name: "number forms",
			sql:  "1 1.5 1.5e10",
			want: []Kind{Number, Number, Number},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.sql, Postgres)
			if err != nil {
				t.Fatalf("Tokenize error: %v", err)
			}
			if len(toks) != len(tc.want) {
				t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(tc.want), toks)
			}
			for i, k := range tc.want {
				if toks[i].Kind != k {
					t.Errorf("token %d: got kind %v (%q), want %v", i, toks[i].Kind, toks[i].Text, k)
				}
			}
		})
	}
}

func TestTokenize_BracketIdentifierSQLServer(t *testing.T) {
	toks, err := Tokenize("SELECT [My Table].[My Col], [a]]b]", SQLServer)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[1].Kind != BracketIdentifier {
		t.Fatalf("expected bracket identifier, got %v", toks[1].Kind)
	}
	if got := toks[1].Unquoted(); got != "My Table" {
		t.Errorf("Unquoted() = %q, want %q", got, "My Table")
	}
	last := toks[len(toks)-1]
	if got := last.Unquoted(); got != "a]b" {
		t.Errorf("Unquoted() escaped bracket = %q, want %q", got, "a]b")
	}
}

func TestTokenize_DoubleQuoteIdentifierElsewhere(t *testing.T) {
	toks, err := Tokenize(`SELECT "my col" FROM t`, Postgres)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[1].Kind != BracketIdentifier {
		t.Fatalf("expected bracket identifier for double-quoted name, got %v", toks[1].Kind)
	}
}

func TestTokenize_UnterminatedStringConsumesToEOF(t *testing.T) {
	toks, err := Tokenize("SELECT 'abc", Postgres)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	last := toks[len(toks)-1]
	if last.Kind != String {
		t.Fatalf("expected unterminated string token, got %v", last.Kind)
	}
	if last.Text != "'abc" {
		t.Errorf("unterminated string text = %q", last.Text)
	}
}

func TestTokenize_PositionsNondecreasing(t *testing.T) {
	toks, err := Tokenize("SELECT a\nFROM b\nWHERE c = 1", Postgres)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Col <= prev.Col) {
			t.Fatalf("positions not strictly nondecreasing at %d: %+v -> %+v", i, prev, cur)
		}
	}
}

func TestTokenize_InvalidUTF8(t *testing.T) {
	_, err := Tokenize("SELECT \xff\xfe", Postgres)
	if err == nil {
		t.Fatal("expected error for invalid UTF-8 input")
	}
}

func TestTokenize_SQLServerBatchSeparator(t *testing.T) {
	toks, err := Tokenize("SELECT 1\nGO\nSELECT 2", SQLServer)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var found bool
	for _, tk := range toks {
		if tk.Kind == BatchSeparator {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a BatchSeparator token for GO")
	}
}

func TestTokenize_TempTableHash(t *testing.T) {
	toks, err := Tokenize("SELECT * INTO #tmp FROM t", SQLServer)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var sawTemp bool
	for _, tk := range toks {
		if tk.Kind == Identifier && tk.Text == "#tmp" {
			sawTemp = true
		}
	}
	if !sawTemp {
		t.Fatalf("expected #tmp identifier token, got %+v", toks)
	}
}
