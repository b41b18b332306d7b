package driving

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// IndexService writes to the vector store on behalf of front ends.
type IndexService interface {
	// Add enqueues a record and returns its id; it becomes searchable
	// after the next flush. An empty id is derived from the content.
	Add(ctx context.Context, id, content string, metadata map[string]string) (string, error)

	// Remove deletes a record immediately. Unknown ids are not an error.
	Remove(ctx context.Context, id string) error

	// Flush commits every pending record.
	Flush(ctx context.Context) (domain.FlushResult, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
