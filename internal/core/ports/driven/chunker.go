package driven

import "github.com/custodia-labs/nova/internal/core/domain"

// Chunker splits document text into retrieval units.
// Identical input must always yield an identical sequence, because
// record ids and cache fingerprints are derived from it.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits text from source into ordered chunks.
	// Empty input produces an empty sequence.
	Chunk(text, source string) []domain.Chunk
}
