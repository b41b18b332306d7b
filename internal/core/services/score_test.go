package services

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"identical", 0, 100},
		{"orthogonal", 1, 0},
		{"opposite", 2, 0},
		{"half", 0.25, 75},
		{"negative drift", -0.01, 100},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeScore(tt.distance), 1e-9)
		})
	}
}

func TestNormalizeScore_MonotonicAndBounded(t *testing.T) {
	distances := []float64{-0.5, 0, 0.001, 0.1, 0.33, 0.5, 0.999, 1, 1.5, 2, 3}
	sort.Float64s(distances)

	prev := math.Inf(1)
	for _, d := range distances {
		s := NormalizeScore(d)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
		assert.LessOrEqual(t, s, prev, "distance %v scored above a nearer one", d)
		prev = s
	}
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 81.65, RoundScore(81.6496580927726))
	assert.Equal(t, 100.0, RoundScore(100))
	assert.Equal(t, 0.0, RoundScore(0.004))
}
