package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nova/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

func (m *MockSearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return []domain.SearchResult{}, nil
}

func testSearchResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ID: "test1", Score: 88.5, Heading: "Programming", Content: "Python is a great programming language", Source: "/notes/test1.md"},
		{ID: "test3", Score: 12.25, Heading: "Development", Content: "Testing ensures code quality", Source: "/notes/test3.md"},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newReadyView(svc *MockSearchService, limit int) *View {
	v := NewView(nil, nil, svc, limit)
	v.SetDimensions(100, 40)
	return v
}

// typeAndSubmit types query, presses enter and runs the resulting search.
func typeAndSubmit(t *testing.T, v *View, query string) {
	t.Helper()
	v.SetQuery(query)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, &MockSearchService{}, 0)

	assert.Equal(t, domain.DefaultSearchLimit, v.Limit())
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_SubmitSearch(t *testing.T) {
	var gotQuery string
	var gotLimit int
	svc := &MockSearchService{SearchFunc: func(_ context.Context, q string, limit int) ([]domain.SearchResult, error) {
		gotQuery, gotLimit = q, limit
		return testSearchResults(), nil
	}}
	v := newReadyView(svc, 7)

	typeAndSubmit(t, v, "  python  ")

	assert.Equal(t, "python", gotQuery)
	assert.Equal(t, 7, gotLimit)
	assert.False(t, v.InputFocused())
	require.Len(t, v.Results(), 2)
	assert.Equal(t, "test1", v.Results()[0].ID)
	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "88.50%")
}

func TestView_BlankQueryDoesNothing(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)
	v.SetQuery("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_SearchError(t *testing.T) {
	svc := &MockSearchService{SearchFunc: func(context.Context, string, int) ([]domain.SearchResult, error) {
		return nil, errors.New("provider down")
	}}
	v := newReadyView(svc, 5)

	typeAndSubmit(t, v, "anything")

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "provider down")
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(nil, nil, nil, 5)
	v.SetDimensions(80, 24)

	typeAndSubmit(t, v, "query")

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_EmptyResults(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)

	typeAndSubmit(t, v, "xyzabc")

	assert.Empty(t, v.Results())
	assert.Contains(t, v.View(), "No results found.")
}

func TestView_StaleResultsIgnored(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)
	typeAndSubmit(t, v, "current")

	v.Update(messages.SearchCompleted{Query: "older", Limit: 5, Results: testSearchResults()})

	assert.Empty(t, v.Results())
}

func TestView_Navigation(t *testing.T) {
	svc := &MockSearchService{SearchFunc: func(context.Context, string, int) ([]domain.SearchResult, error) {
		return testSearchResults(), nil
	}}
	v := newReadyView(svc, 5)
	typeAndSubmit(t, v, "python")

	v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.SelectedIndex())
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, v.Expanded())
	assert.Contains(t, v.View(), "Python is a great programming language")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.Expanded())
}

func TestView_ChangeLimitReruns(t *testing.T) {
	var limits []int
	svc := &MockSearchService{SearchFunc: func(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
		limits = append(limits, limit)
		return testSearchResults(), nil
	}}
	v := newReadyView(svc, 5)
	typeAndSubmit(t, v, "python")

	_, cmd := v.Update(keyRunes("+"))
	require.NotNil(t, cmd)
	v.Update(cmd())
	assert.Equal(t, 6, v.Limit())

	_, cmd = v.Update(keyRunes("-"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, []int{5, 6, 5}, limits)
	assert.Len(t, v.Results(), 2)
}

func TestView_LimitBounds(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 1)
	typeAndSubmit(t, v, "q")

	_, cmd := v.Update(keyRunes("-"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, v.Limit())

	v = newReadyView(&MockSearchService{}, MaxLimit)
	typeAndSubmit(t, v, "q")
	_, cmd = v.Update(keyRunes("+"))
	assert.Nil(t, cmd)
	assert.Equal(t, MaxLimit, v.Limit())
}

func TestView_NewSearchAndBack(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)
	typeAndSubmit(t, v, "first")

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.InputFocused())
	assert.Equal(t, "first", v.Query())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", v.Query())

	typeAndSubmit(t, v, "second")
	v.Update(keyRunes("/"))
	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Query())
}

func TestView_StatsLoaded(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)

	v.Update(messages.StatsLoaded{Stats: domain.StoreStats{Records: 9, Sources: 3}})

	assert.Contains(t, v.View(), "9 records in 3 sources")
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newReadyView(&MockSearchService{}, 5)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
}
