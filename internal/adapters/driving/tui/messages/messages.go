// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/nova/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Limit   int
	Results []domain.SearchResult
	Err     error
}

// StatsLoaded carries the store summary shown in the status bar.
type StatsLoaded struct {
	Stats domain.StoreStats
	Err   error
}

// ErrorOccurred reports an error outside a search.
type ErrorOccurred struct {
	Err error
}
