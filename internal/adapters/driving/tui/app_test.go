package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nova/internal/core/domain"
)

type MockSearchService struct {
	results []domain.SearchResult
	limit   int
}

func (m *MockSearchService) Search(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.limit = limit
	return m.results, nil
}

type MockIndexService struct {
	stats domain.StoreStats
}

func (m *MockIndexService) Add(context.Context, string, string, map[string]string) (string, error) {
	return "", nil
}

func (m *MockIndexService) Remove(context.Context, string) error { return nil }

func (m *MockIndexService) Flush(context.Context) (domain.FlushResult, error) {
	return domain.FlushResult{}, nil
}

func (m *MockIndexService) Stats(context.Context) (domain.StoreStats, error) {
	return m.stats, nil
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_NotReadyUntilSized(t *testing.T) {
	app, err := NewApp(&Ports{Search: &MockSearchService{}})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Nova")
}

func TestApp_LimitFromPorts(t *testing.T) {
	search := &MockSearchService{}
	app := newTestApp(t, &Ports{Search: search, Limit: 3})

	app.SearchView().SetQuery("notes")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, 3, search.limit)
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t, &Ports{Search: &MockSearchService{}})

	// q is typed into the query while the input has focus.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, isQuit(t, cmd))
	assert.Equal(t, "q", app.SearchView().Query())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(t, cmd))
}

func TestApp_QuitFromResults(t *testing.T) {
	app := newTestApp(t, &Ports{Search: &MockSearchService{}})
	app.SearchView().SetQuery("notes")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, isQuit(t, cmd))
}

func TestApp_HelpOverlay(t *testing.T) {
	app := newTestApp(t, &Ports{Search: &MockSearchService{}})
	app.SearchView().SetQuery("notes")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.True(t, app.HelpVisible())
	assert.Contains(t, app.View(), "new search")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, app.HelpVisible())
}

func TestApp_InitLoadsStats(t *testing.T) {
	index := &MockIndexService{stats: domain.StoreStats{Records: 5, Sources: 2}}
	app := newTestApp(t, &Ports{Search: &MockSearchService{}, Index: index})

	msg := app.loadStats()()
	loaded, ok := msg.(messages.StatsLoaded)
	require.True(t, ok)
	assert.Equal(t, index.stats, loaded.Stats)

	app.Update(loaded)
	assert.Contains(t, app.View(), "5 records in 2 sources")
}

func TestApp_NoStatsWithoutIndex(t *testing.T) {
	app := newTestApp(t, &Ports{Search: &MockSearchService{}})

	assert.Nil(t, app.loadStats())
	assert.NotNil(t, app.Init())
}
