// Package list renders ranked search results.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nova/internal/core/domain"
)

// linesPerResult is the height of a collapsed result.
const linesPerResult = 3

// ResultList is a scrollable list of results with one selected entry,
// which can be expanded to its full content.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 12}
}

// View renders the visible window of results. Results are shown in the
// order given, with scores formatted as the CLI prints them.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results found.")
	}

	lines := make([]string, 0, len(r.results)*linesPerResult)

	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, r.results[i]))
	}
	if end < len(r.results) {
		lines = append(lines, r.styles.Muted.Render(fmt.Sprintf("  … %d more", len(r.results)-end)))
	}

	if r.expanded {
		if res := r.SelectedResult(); res != nil {
			lines = append(lines, "", r.styles.Preview.Width(r.contentWidth()).Render(res.Content))
		}
	}

	return strings.Join(lines, "\n")
}

// window returns the [start, end) range of results that fit the height,
// keeping the selected result visible.
func (r *ResultList) window() (start, end int) {
	visible := r.height / linesPerResult
	if r.expanded {
		visible /= 2
	}
	if visible < 1 {
		visible = 1
	}
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end = start + visible
	if end > len(r.results) {
		end = len(r.results)
	}
	return start, end
}

func (r *ResultList) renderResult(index int, res domain.SearchResult) string {
	heading := res.Heading
	if heading == "" {
		heading = res.ID
	}
	heading = truncate(heading, r.contentWidth()-12)

	score := fmt.Sprintf("%.2f%%", res.Score)
	var title string
	if index == r.selected {
		title = r.styles.Selected.Render(fmt.Sprintf("> [%d] %s", index+1, heading)) + " " + r.styles.Score.Render(score)
	} else {
		title = r.styles.Heading.Render(fmt.Sprintf("  [%d] %s", index+1, heading)) + " " + r.styles.Score.Render(score)
	}

	source := res.Source
	if source != "" {
		source = filepath.Base(source)
	}
	sourceLine := r.styles.Muted.Render("      " + source)

	preview := strings.Join(strings.Fields(res.Content), " ")
	previewLine := r.styles.Normal.Render("      " + truncate(preview, r.contentWidth()-6))

	return title + "\n" + sourceLine + "\n" + previewLine
}

func (r *ResultList) contentWidth() int {
	if r.width < 30 {
		return 30
	}
	return r.width - 2
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if n < 4 || len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the results in display order.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected result, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp selects the previous result.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown selects the next result.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// ToggleExpanded shows or hides the full content of the selected result.
func (r *ResultList) ToggleExpanded() {
	if len(r.results) > 0 {
		r.expanded = !r.expanded
	}
}

// Expanded reports whether the selected result is expanded.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// SetDimensions sets the area available to the list.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
