// Package input provides the query input of the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/styles"
)

// maxQueryLength bounds what a user can type.
const maxQueryLength = 512

// QueryInput wraps a bubbles textinput with a prompt label.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQueryInput creates a focused query input.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "What are you looking for?"
	ti.Prompt = "› "
	ti.CharLimit = maxQueryLength
	ti.Focus()

	q := &QueryInput{textinput: ti, styles: s}
	q.SetWidth(60)
	return q
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the underlying textinput.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and the framed input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Search ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current query.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue replaces the query.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus gives the input the keyboard.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur releases the keyboard.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the input has the keyboard.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sizes the input to the terminal, leaving room for the label
// and the frame.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	inner := width - 14
	if inner < 20 {
		inner = 20
	}
	q.textinput.Width = inner
}

// Width returns the width the input was sized to.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the query.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
}
