package knn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
)

func TestDistance(t *testing.T) {
	q := []float32{1, 0}
	assert.InDelta(t, 0, Distance(q, Magnitude(q), []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1, Distance(q, Magnitude(q), []float32{0, 3}), 1e-9)
	assert.InDelta(t, 2, Distance(q, Magnitude(q), []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, Distance(q, Magnitude(q), []float32{0, 0}))
}

func TestScanner_TopKOrdering(t *testing.T) {
	s := NewScanner([]float32{1, 0}, 3)
	require.NoError(t, s.Offer("far", []float32{0, 1}, nil))
	require.NoError(t, s.Offer("b-tie", []float32{1, 1}, nil))
	require.NoError(t, s.Offer("exact", []float32{1, 0}, nil))
	require.NoError(t, s.Offer("a-tie", []float32{2, 2}, nil))
	require.NoError(t, s.Offer("opposite", []float32{-1, 0}, nil))

	hits := s.Hits()
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].ID)
	assert.Equal(t, "a-tie", hits[1].ID, "equal distances break ties by id")
	assert.Equal(t, "b-tie", hits[2].ID)
}

func TestScanner_DimensionMismatch(t *testing.T) {
	s := NewScanner([]float32{1, 0}, 1)
	err := s.Offer("x", []float32{1, 0, 0}, nil)
	assert.ErrorIs(t, err, domain.ErrStoreIO)
	assert.Contains(t, err.Error(), "reindex")
}

func TestScanner_ZeroK(t *testing.T) {
	s := NewScanner([]float32{1}, 0)
	require.NoError(t, s.Offer("x", []float32{1}, nil))
	assert.Empty(t, s.Hits())
}
