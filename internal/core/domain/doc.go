// Package domain defines the core business entities for Nova.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source file after its format handler has run
//   - Chunk: A heading-scoped unit of text, the unit of embedding
//   - IndexedRecord: A chunk's vector and metadata as stored in the index
//   - SearchResult: A ranked hit returned to every front end
//   - Settings: Validated application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
