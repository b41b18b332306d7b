package driven

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// VectorIndex provides persistent nearest-neighbour storage.
// Each store instance owns one directory; storage failures wrap
// domain.ErrStoreIO.
type VectorIndex interface {
	// Upsert writes records atomically. An existing id is replaced.
	Upsert(ctx context.Context, records []domain.IndexedRecord) error

	// Delete removes a record. Unknown ids return domain.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Query returns up to k records nearest to vector, ordered by
	// ascending distance and then by id.
	Query(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// Get returns one record or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.IndexedRecord, error)

	// IDs lists record ids, restricted to one source when source is non-empty.
	IDs(ctx context.Context, source string) ([]string, error)

	// Stats counts records and distinct sources.
	Stats(ctx context.Context) (records, sources int, err error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched record.
	ID string

	// Distance is the cosine distance (1 - cosine similarity), in [0, 2].
	Distance float64

	// Metadata is the record metadata.
	Metadata map[string]string
}
