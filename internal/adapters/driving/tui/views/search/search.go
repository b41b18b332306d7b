// Package search provides the search screen of the TUI: a query input, the
// ranked results and a status bar.
package search

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nova/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driving"
)

// MaxLimit caps how far the limit can be raised from the keyboard.
const MaxLimit = 50

// View is the search screen.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	limit      int
	lastQuery  string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a search screen that asks for limit results per query.
// A non-positive limit uses domain.DefaultSearchLimit.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	limit int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		limit:         limit,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search screen.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.StatsLoaded:
		if msg.Err == nil {
			v.statusbar.SetStats(msg.Stats)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.Expand):
		v.list.ToggleExpanded()
	case key.Matches(msg, v.keymap.More):
		return v, v.changeLimit(1)
	case key.Matches(msg, v.keymap.Fewer):
		return v, v.changeLimit(-1)
	case key.Matches(msg, v.keymap.NewSearch):
		v.input.SetValue("")
		return v, v.focus()
	case key.Matches(msg, v.keymap.Back):
		return v, v.focus()
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Search):
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		return v, v.submit(query)
	case key.Matches(msg, v.keymap.Back):
		v.input.SetValue("")
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) focus() tea.Cmd {
	v.focusInput = true
	return v.input.Focus()
}

// changeLimit moves the limit by delta within [1, MaxLimit] and re-runs
// the last query.
func (v *View) changeLimit(delta int) tea.Cmd {
	next := v.limit + delta
	if next < 1 || next > MaxLimit {
		return nil
	}
	v.limit = next
	v.statusbar.SetLimit(next)
	if v.lastQuery == "" {
		return nil
	}
	return v.submit(v.lastQuery)
}

func (v *View) submit(query string) tea.Cmd {
	v.lastQuery = query
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateSearching)
	return v.performSearch(query, v.limit)
}

// performSearch runs the query off the UI goroutine.
func (v *View) performSearch(query string, limit int) tea.Cmd {
	svc := v.searchService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, query, limit)
		return messages.SearchCompleted{Query: query, Limit: limit, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	// A newer query or limit has been submitted since.
	if msg.Query != v.lastQuery || msg.Limit != v.limit {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.statusbar.SetMessage("")
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetLimit(msg.Limit)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Nova"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.lastQuery != "" {
		sections = append(sections, v.list.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sizes the screen and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-9)
	v.statusbar.SetWidth(width)
}

// Ready reports whether the screen has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the text in the input.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery replaces the text in the input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Limit returns the limit the next search runs with.
func (v *View) Limit() int {
	return v.limit
}

// Results returns the results in display order.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Expanded reports whether the selected result is expanded.
func (v *View) Expanded() bool {
	return v.list.Expanded()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused reports whether keys go to the query input.
func (v *View) InputFocused() bool {
	return v.focusInput
}
