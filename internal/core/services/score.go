package services

import "math"

// NormalizeScore maps a cosine distance to a relevance score in [0, 100].
// It is monotonic: a smaller distance never scores lower. Distances
// outside [0, 1] clamp to the bounds and NaN scores 0.
func NormalizeScore(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	score := (1 - distance) * 100
	switch {
	case score > 100:
		return 100
	case score < 0:
		return 0
	default:
		return score
	}
}

// RoundScore rounds to the two decimals every front end displays.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
