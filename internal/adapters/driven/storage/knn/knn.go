// Package knn implements exact nearest-neighbour search by cosine
// distance. Both vector index backends scan their records through it so
// that ranking is identical regardless of where the vectors live.
package knn

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Scanner accumulates the k nearest candidates to a query vector.
type Scanner struct {
	query []float32
	qmag  float64
	k     int
	top   hitHeap
}

// NewScanner prepares a scan for the k nearest records to query.
func NewScanner(query []float32, k int) *Scanner {
	return &Scanner{query: query, qmag: Magnitude(query), k: k}
}

// Offer considers one record. A vector of a different dimension means the
// store was built with another embedding model and fails with
// domain.ErrStoreIO until it is reindexed.
func (s *Scanner) Offer(id string, vector []float32, metadata map[string]string) error {
	if len(vector) != len(s.query) {
		return fmt.Errorf("%w: record %s has %d dimensions but the embedding model produces %d; reindex the store with the current model",
			domain.ErrStoreIO, id, len(vector), len(s.query))
	}
	if s.k <= 0 {
		return nil
	}

	hit := driven.VectorHit{ID: id, Distance: Distance(s.query, s.qmag, vector), Metadata: metadata}
	if len(s.top) < s.k {
		heap.Push(&s.top, hit)
		return nil
	}
	if worse(s.top[0], hit) {
		s.top[0] = hit
		heap.Fix(&s.top, 0)
	}
	return nil
}

// Hits returns the collected hits ordered by ascending distance, then id.
func (s *Scanner) Hits() []driven.VectorHit {
	out := make([]driven.VectorHit, len(s.top))
	copy(out, s.top)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}

// Distance is the cosine distance 1 - cos(a, b). A zero vector on either
// side is orthogonal to everything.
func Distance(query []float32, qmag float64, v []float32) float64 {
	vmag := Magnitude(v)
	if qmag == 0 || vmag == 0 {
		return 1
	}
	d := 1 - Dot(query, v)/(qmag*vmag)
	if math.IsNaN(d) {
		return 1
	}
	return d
}

// Dot returns the dot product of equal-length vectors.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Magnitude returns the L2 norm.
func Magnitude(v []float32) float64 { return math.Sqrt(Dot(v, v)) }

// worse reports whether a ranks after b.
func worse(a, b driven.VectorHit) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.ID > b.ID
}

// hitHeap keeps the worst retained hit at the root.
type hitHeap []driven.VectorHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x any)        { *h = append(*h, x.(driven.VectorHit)) }
func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
