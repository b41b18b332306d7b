package driving

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// SearchService is the single search entry point shared by every front end.
// Identical (query, limit) against the same store yields identical results.
type SearchService interface {
	// Search returns at most limit results, ranked by descending score.
	// A limit of zero or less uses the configured default.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}
