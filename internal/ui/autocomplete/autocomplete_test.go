package autocomplete

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/sqlscope/internal/complete"
	"github.com/sadopc/sqlscope/internal/itemfmt"
	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/theme"
	"github.com/sadopc/sqlscope/internal/token"
)

func init() {
	theme.Current = theme.Default()
}

func testEngine() *complete.Engine {
	f := metadata.NewFake("main", "main")
	f.AddTable(schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "integer"},
			{Name: "name", Type: "text"},
		},
	})
	return complete.New(f, complete.Options{Server: "srv", Database: "main", Schema: "main"})
}

func TestNew(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)

	if m.Visible() {
		t.Fatal("expected not visible initially")
	}
	if m.engine != nil {
		t.Fatal("expected nil engine")
	}
	if m.width != 40 {
		t.Fatalf("expected default width=40, got %d", m.width)
	}
}

func TestNew_WithEngine(t *testing.T) {
	eng := testEngine()
	m := New(eng, "buf1", token.Postgres)

	if m.engine != eng {
		t.Fatal("expected engine to be set")
	}
}

func TestTrigger_NoEngine(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)

	cmd := m.Trigger("SELECT ", 1, 8)
	if cmd != nil {
		t.Fatal("expected nil cmd when engine is nil")
	}
}

func TestTrigger_WithEngine(t *testing.T) {
	eng := testEngine()
	m := New(eng, "buf1", token.Postgres)

	cmd := m.Trigger("SELECT  FROM users", 1, 8)
	if cmd == nil {
		t.Fatal("expected a cmd from Trigger with an engine set")
	}
	msg := cmd()
	m, _ = m.Update(msg)

	if !m.Visible() {
		t.Fatal("expected visible after a column completion with matches")
	}
	if len(m.filtered) == 0 {
		t.Fatal("expected some filtered items")
	}
}

func TestUpdate_Navigation(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{
		{Label: "users", Kind: itemfmt.KindClass},
		{Label: "orders", Kind: itemfmt.KindClass},
		{Label: "products", Kind: itemfmt.KindClass},
	}
	m.visible = true
	m.selected = 0

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Fatalf("expected selected=1 after down, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 2 {
		t.Fatalf("expected selected=2 after down, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 2 {
		t.Fatalf("expected selected=2 at boundary, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 1 {
		t.Fatalf("expected selected=1 after up, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 0 {
		t.Fatalf("expected selected=0 after up, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 0 {
		t.Fatalf("expected selected=0 at boundary, got %d", m.selected)
	}
}

func TestUpdate_CtrlNavigation(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{{Label: "a"}, {Label: "b"}}
	m.visible = true
	m.selected = 0

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.selected != 1 {
		t.Fatalf("expected selected=1 after ctrl+n, got %d", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.selected != 0 {
		t.Fatalf("expected selected=0 after ctrl+p, got %d", m.selected)
	}
}

func TestUpdate_Enter(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{
		{Label: "users", InsertText: "users", Kind: itemfmt.KindClass},
		{Label: "orders", InsertText: "orders", Kind: itemfmt.KindClass},
	}
	m.visible = true
	m.selected = 0
	m.prefix = "us"

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.Visible() {
		t.Fatal("expected not visible after enter")
	}
	if cmd == nil {
		t.Fatal("expected cmd from enter")
	}
	msg := cmd()
	selMsg, ok := msg.(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", msg)
	}
	if selMsg.Text != "ers" {
		t.Fatalf("expected 'ers' (prefix stripped), got %q", selMsg.Text)
	}
}

func TestUpdate_Tab(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{{Label: "users", InsertText: "users"}}
	m.visible = true
	m.selected = 0
	m.prefix = ""

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if m.Visible() {
		t.Fatal("expected not visible after tab")
	}
	if cmd == nil {
		t.Fatal("expected cmd from tab")
	}
	msg := cmd()
	selMsg, ok := msg.(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", msg)
	}
	if selMsg.Text != "users" {
		t.Fatalf("expected 'users', got %q", selMsg.Text)
	}
}

func TestUpdate_Escape(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{{Label: "test"}}
	m.visible = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})

	if m.Visible() {
		t.Fatal("expected not visible after escape")
	}
	if cmd == nil {
		t.Fatal("expected cmd from escape")
	}
	msg := cmd()
	if _, ok := msg.(DismissMsg); !ok {
		t.Fatalf("expected DismissMsg, got %T", msg)
	}
}

func TestUpdate_CtrlC(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.filtered = []itemfmt.Item{{Label: "test"}}
	m.visible = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if m.Visible() {
		t.Fatal("expected not visible after ctrl+c")
	}
	if cmd == nil {
		t.Fatal("expected cmd from ctrl+c")
	}
	msg := cmd()
	if _, ok := msg.(DismissMsg); !ok {
		t.Fatalf("expected DismissMsg, got %T", msg)
	}
}

func TestUpdate_NotVisible(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if cmd != nil {
		t.Fatal("expected nil cmd when not visible")
	}
}

func TestDismiss(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.visible = true

	m.Dismiss()
	if m.Visible() {
		t.Fatal("expected not visible after Dismiss()")
	}
}

func TestView_Hidden(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)

	view := m.View()
	if view != "" {
		t.Fatalf("expected empty view when hidden, got %q", view)
	}
}

func TestView_EmptyFiltered(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.visible = true
	m.filtered = nil

	view := m.View()
	if view != "" {
		t.Fatalf("expected empty view with no filtered items, got %q", view)
	}
}

func TestView_WithItems(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.visible = true
	m.filtered = []itemfmt.Item{
		{Label: "users", Kind: itemfmt.KindClass, Detail: "table"},
		{Label: "orders", Kind: itemfmt.KindClass, Detail: "table"},
	}
	m.selected = 0

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty view with items")
	}
}

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		name string
		text string
		col  int
		want string
	}{
		{"empty", "", 1, ""},
		{"single word", "SELECT", 7, "SELECT"},
		{"word after space", "SELECT us", 10, "us"},
		{"at space boundary", "SELECT ", 8, ""},
		{"after open paren", "COUNT(u", 8, "u"},
		{"after comma", "id,na", 6, "na"},
		{"after dot", "users.na", 9, "na"},
		{"after equals", "id=val", 7, "val"},
		{"cursor past end", "abc", 100, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPrefix(tt.text, 1, tt.col)
			if got != tt.want {
				t.Errorf("extractPrefix(%q, 1, %d) = %q, want %q", tt.text, tt.col, got, tt.want)
			}
		})
	}
}

func TestSetPosition(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	m.SetPosition(10, 20)

	if m.posX != 10 {
		t.Fatalf("expected posX=10, got %d", m.posX)
	}
	if m.posY != 20 {
		t.Fatalf("expected posY=20, got %d", m.posY)
	}
}

func TestSetEngine(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	if m.engine != nil {
		t.Fatal("expected nil engine")
	}

	eng := testEngine()
	m.SetEngine(eng)

	if m.engine != eng {
		t.Fatal("expected engine to be set")
	}
}

func TestInit(t *testing.T) {
	m := New(nil, "buf1", token.Postgres)
	cmd := m.Init()
	if cmd != nil {
		t.Fatal("expected nil cmd from Init")
	}
}

func TestKindIcon(t *testing.T) {
	tests := []struct {
		kind itemfmt.Kind
		want string
	}{
		{itemfmt.KindClass, "T"},
		{itemfmt.KindField, "C"},
		{itemfmt.KindKeyword, "K"},
		{itemfmt.KindFunction, "F"},
		{itemfmt.KindModule, "D"},
		{itemfmt.KindStruct, "V"},
		{itemfmt.Kind(99), " "},
	}

	for _, tt := range tests {
		got := kindIcon(tt.kind)
		if got != tt.want {
			t.Errorf("kindIcon(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsWordBreak(t *testing.T) {
	wordBreaks := []byte{' ', '\t', '\n', '(', ')', ',', ';', '.', '=', '<', '>'}
	for _, b := range wordBreaks {
		if !isWordBreak(b) {
			t.Errorf("expected %q to be word break", string(b))
		}
	}

	nonBreaks := []byte{'a', 'Z', '0', '_'}
	for _, b := range nonBreaks {
		if isWordBreak(b) {
			t.Errorf("expected %q to NOT be word break", string(b))
		}
	}
}
