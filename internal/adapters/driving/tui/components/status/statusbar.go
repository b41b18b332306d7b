// Package status provides the status bar of the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nova/internal/core/domain"
)

// State is what the search screen is doing.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar shows the search state and store summary on the left and key hints
// on the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	state       State
	message     string
	resultCount int
	limit       int
	stats       *domain.StoreStats
	width       int
}

// NewBar creates a status bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	var parts []string

	switch b.state {
	case StateSearching:
		parts = append(parts, "Searching...")
	case StateError:
		msg := "Error"
		if b.message != "" {
			msg = "Error: " + b.message
		}
		return b.styles.Error.Render(msg)
	case StateResults:
		parts = append(parts, fmt.Sprintf("%d results", b.resultCount))
	default:
		parts = append(parts, "Ready")
	}

	if b.limit > 0 {
		parts = append(parts, fmt.Sprintf("limit %d", b.limit))
	}
	if b.stats != nil {
		parts = append(parts, fmt.Sprintf("%d records in %d sources", b.stats.Records, b.stats.Sources))
	}
	if b.message != "" {
		parts = append(parts, b.message)
	}
	return b.styles.Muted.Render(strings.Join(parts, " · "))
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StateResults && b.resultCount > 0 {
		bindings = b.keymap.ResultsHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a transient message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the transient message.
func (b *Bar) Message() string {
	return b.message
}

// SetResultCount sets the number of results shown.
func (b *Bar) SetResultCount(count int) {
	b.resultCount = count
}

// SetLimit sets the limit the last search ran with.
func (b *Bar) SetLimit(limit int) {
	b.limit = limit
}

// SetStats sets the store summary.
func (b *Bar) SetStats(stats domain.StoreStats) {
	b.stats = &stats
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the bar to ready, keeping the store summary.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.resultCount = 0
}
