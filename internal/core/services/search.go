package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driving"
	"github.com/custodia-labs/nova/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search is the one ranking path every front end goes through. It embeds
// query, keeps results scoring above the store's minimum, rounds scores to
// two decimals and orders them by descending score, then ascending id.
// Formatting happens after this call and must not reorder or rescore.
//
// An empty query, or one the embedder finds no terms in, returns no
// results; a non-positive limit is invalid.
func Search(ctx context.Context, store *VectorStore, query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}

	logger.Debug("Search: query=%q limit=%d", query, limit)

	raw, err := store.query(ctx, query, limit)
	if errors.Is(err, domain.ErrNothingToEmbed) {
		logger.Debug("Search: no terms in %q", query)
		return []domain.SearchResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	minScore := store.MinScore()
	results := make([]domain.SearchResult, 0, len(raw))
	for _, r := range raw {
		if r.Score <= minScore {
			continue
		}
		r.Score = RoundScore(r.Score)
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	logger.Debug("Search: %d of %d hits above min score %.2f", len(results), len(raw), minScore)
	return results, nil
}

// SearchService adapts Search to the driving port, applying a default limit.
type SearchService struct {
	store        *VectorStore
	defaultLimit int
}

// NewSearchService creates a search service over store.
func NewSearchService(store *VectorStore, defaultLimit int) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSearchLimit
	}
	return &SearchService{store: store, defaultLimit: defaultLimit}
}

// Search runs Search with limit, or the default limit when limit <= 0.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return Search(ctx, s.store, query, limit)
}

// DefaultLimit returns the limit used when callers pass none.
func (s *SearchService) DefaultLimit() int {
	return s.defaultLimit
}
