package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Removing an unknown id is a no-op, so callers on the write path
	// swallow it; read paths surface it.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no handler accepts a file.
	ErrUnsupportedType = errors.New("unsupported type")

	// Provider Errors.

	// ErrProvider indicates an embedding, vision or OCR call failed.
	// Inside a batch it only drops the affected item.
	ErrProvider = errors.New("provider error")

	// ErrNothingToEmbed indicates text has no terms an embedder can use,
	// such as pure punctuation. A query like that matches nothing.
	ErrNothingToEmbed = errors.New("nothing to embed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVisionUnavailable indicates no image description service is configured.
	// Image documents are still indexed, without a description.
	ErrVisionUnavailable = errors.New("vision service unavailable")

	// ErrOCRUnavailable indicates no OCR engine is installed or configured.
	ErrOCRUnavailable = errors.New("ocr engine unavailable")

	// Cache Errors.

	// ErrCorruptedCacheEntry indicates a cached payload failed its validity
	// check on load. The entry is deleted and the result recomputed.
	ErrCorruptedCacheEntry = errors.New("corrupted cache entry")

	// Store Errors.

	// ErrStoreIO indicates the vector index storage is unreadable or
	// unwritable. It is fatal to the operation and never retried.
	ErrStoreIO = errors.New("vector store i/o failure")

	// ErrBacklogFull indicates the store already holds its maximum of
	// records waiting for a flush and a flush could not make room.
	ErrBacklogFull = errors.New("pending backlog full")

	// ErrStoreClosed indicates an operation on a closed vector store.
	ErrStoreClosed = errors.New("vector store closed")
)
