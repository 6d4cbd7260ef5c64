package autocomplete

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/sqlscope/internal/complete"
	"github.com/sadopc/sqlscope/internal/itemfmt"
	"github.com/sadopc/sqlscope/internal/theme"
	"github.com/sadopc/sqlscope/internal/token"
)

const maxVisible = 5

// SelectedMsg is sent when an autocomplete item is selected.
type SelectedMsg struct {
	Text string
}

// DismissMsg is sent when autocomplete is dismissed.
type DismissMsg struct{}

// resultMsg carries a completed request's items back into the Bubble Tea
// event loop.
type resultMsg struct {
	items []itemfmt.Item
	err   error
}

// Model is the autocomplete dropdown overlay.
type Model struct {
	filtered []itemfmt.Item
	selected int
	visible  bool
	prefix   string // current word prefix being completed
	engine   *complete.Engine
	bufferID string
	dialect  token.Dialect
	posX     int // cursor X position for overlay placement
	posY     int // cursor Y position
	width    int
}

// New creates a new autocomplete model bound to one editor buffer.
func New(engine *complete.Engine, bufferID string, dialect token.Dialect) Model {
	return Model{
		engine:   engine,
		bufferID: bufferID,
		dialect:  dialect,
		width:    40,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles autocomplete interactions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if msg.err != nil || len(msg.items) == 0 {
			m.visible = false
			return m, nil
		}
		m.filtered = msg.items
		m.selected = 0
		m.visible = true
		return m, nil
	}

	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.filtered)-1 {
				m.selected++
			}
			return m, nil

		case "enter", "tab":
			if m.selected < len(m.filtered) {
				item := m.filtered[m.selected]
				text := item.InsertText
				if len(m.prefix) > 0 && strings.HasPrefix(strings.ToLower(text), strings.ToLower(m.prefix)) {
					text = text[len(m.prefix):]
				}
				m.visible = false
				return m, func() tea.Msg { return SelectedMsg{Text: text} }
			}

		case "esc", "ctrl+c":
			m.visible = false
			return m, func() tea.Msg { return DismissMsg{} }
		}
	}

	return m, nil
}

// View renders the autocomplete dropdown.
func (m Model) View() string {
	if !m.visible || len(m.filtered) == 0 {
		return ""
	}

	th := theme.Current

	visible := m.filtered
	offset := 0
	if len(visible) > maxVisible {
		if m.selected >= maxVisible {
			offset = m.selected - maxVisible + 1
		}
		end := offset + maxVisible
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[offset:end]
	}

	var lines []string
	for i, item := range visible {
		idx := offset + i
		icon := kindIcon(item.Kind)
		label := icon + " " + item.Label
		if item.Detail != "" {
			label += "  " + item.Detail
		}
		if len(label) > m.width-2 {
			label = label[:m.width-5] + "..."
		}
		for len(label) < m.width-2 {
			label += " "
		}

		if idx == m.selected {
			lines = append(lines, th.AutocompleteSelected.Render(label))
		} else {
			lines = append(lines, th.AutocompleteItem.Render(label))
		}
	}

	content := strings.Join(lines, "\n")
	return th.AutocompleteBorder.Render(content)
}

// Trigger asks the completion engine for candidates at (line, col) in text
// and returns a tea.Cmd that delivers a resultMsg once the (possibly async,
// metadata-fetching) request completes.
func (m *Model) Trigger(text string, line, col int) tea.Cmd {
	if m.engine == nil {
		return nil
	}

	m.engine.SetBuffer(m.bufferID, complete.Buffer{Text: text, Dialect: m.dialect})
	m.prefix = extractPrefix(text, line, col)

	bufferID := m.bufferID
	engine := m.engine
	return func() tea.Msg {
		done := make(chan resultMsg, 1)
		engine.Complete(context.Background(), bufferID, line, col, func(r complete.Result, err error) {
			done <- resultMsg{items: r.Items, err: err}
		})
		return <-done
	}
}

// Dismiss hides the autocomplete.
func (m *Model) Dismiss() {
	m.visible = false
}

// Visible returns whether autocomplete is shown.
func (m Model) Visible() bool {
	return m.visible
}

// SetPosition sets the overlay position hint.
func (m *Model) SetPosition(x, y int) {
	m.posX = x
	m.posY = y
}

// SetEngine swaps the completion engine (e.g. on reconnect to a new
// database).
func (m *Model) SetEngine(engine *complete.Engine) {
	m.engine = engine
}

// extractPrefix finds the partial identifier immediately left of (line, col)
// in text, used to strip the already-typed portion from an inserted item.
func extractPrefix(text string, line, col int) string {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	cur := lines[line-1]
	if col > len(cur)+1 {
		col = len(cur) + 1
	}
	before := cur[:col-1]
	i := len(before) - 1
	for i >= 0 && !isWordBreak(before[i]) {
		i--
	}
	return before[i+1:]
}

func isWordBreak(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '(' || b == ')' ||
		b == ',' || b == ';' || b == '.' || b == '=' || b == '<' || b == '>'
}

func kindIcon(k itemfmt.Kind) string {
	switch k {
	case itemfmt.KindField:
		return "C"
	case itemfmt.KindClass:
		return "T"
	case itemfmt.KindFunction:
		return "F"
	case itemfmt.KindKeyword:
		return "K"
	case itemfmt.KindSnippet:
		return "S"
	case itemfmt.KindModule:
		return "D"
	case itemfmt.KindStruct:
		return "V"
	default:
		return " "
	}
}
