package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/nova/internal/adapters/driven/storage/knn"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Records live for the lifetime of the process.
type VectorIndex struct {
	mu      sync.RWMutex
	records map[string]domain.IndexedRecord
	closed  bool
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		records: make(map[string]domain.IndexedRecord),
	}
}

// Upsert stores records, replacing any with the same id.
func (v *VectorIndex) Upsert(_ context.Context, records []domain.IndexedRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.ErrStoreClosed
	}
	for _, r := range records {
		v.records[r.ID] = clone(r)
	}
	return nil
}

// Delete removes a record by id.
func (v *VectorIndex) Delete(_ context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.ErrStoreClosed
	}
	if _, ok := v.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(v.records, id)
	return nil
}

// Query scans every record for the k nearest to vector.
func (v *VectorIndex) Query(_ context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, domain.ErrStoreClosed
	}

	scan := knn.NewScanner(vector, k)
	for id, r := range v.records {
		if err := scan.Offer(id, r.Vector, cloneMeta(r.Metadata)); err != nil {
			return nil, err
		}
	}
	return scan.Hits(), nil
}

// Get retrieves a record by id.
func (v *VectorIndex) Get(_ context.Context, id string) (*domain.IndexedRecord, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, domain.ErrStoreClosed
	}
	r, ok := v.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(r)
	return &out, nil
}

// IDs lists record ids in sorted order, optionally for one source.
func (v *VectorIndex) IDs(_ context.Context, source string) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, domain.ErrStoreClosed
	}

	ids := make([]string, 0, len(v.records))
	for id, r := range v.records {
		if source == "" || r.Metadata[domain.MetaSource] == source {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats counts records and distinct non-empty sources.
func (v *VectorIndex) Stats(_ context.Context) (int, int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return 0, 0, domain.ErrStoreClosed
	}

	sources := make(map[string]struct{})
	for _, r := range v.records {
		if s := r.Metadata[domain.MetaSource]; s != "" {
			sources[s] = struct{}{}
		}
	}
	return len(v.records), len(sources), nil
}

// Close discards all records.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.records = nil
	return nil
}

func clone(r domain.IndexedRecord) domain.IndexedRecord {
	return domain.IndexedRecord{
		ID:       r.ID,
		Vector:   append([]float32(nil), r.Vector...),
		Metadata: cloneMeta(r.Metadata),
	}
}

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
