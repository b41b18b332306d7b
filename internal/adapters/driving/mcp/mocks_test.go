package mcp

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.results, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	added   []string
	meta    map[string]string
	removed []string
	flushes int
	result  domain.FlushResult
	stats   domain.StoreStats
	err     error
}

func (m *mockIndexService) Add(_ context.Context, id, _ string, metadata map[string]string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if id == "" {
		id = "derived-id"
	}
	m.added = append(m.added, id)
	m.meta = metadata
	return id, nil
}

func (m *mockIndexService) Remove(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockIndexService) Flush(_ context.Context) (domain.FlushResult, error) {
	m.flushes++
	return m.result, m.err
}

func (m *mockIndexService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}
