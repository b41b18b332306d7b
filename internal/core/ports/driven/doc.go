// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Maps text to fixed-length vectors
//   - VectorIndex: Persistent (id -> vector, metadata) storage with kNN query
//   - Handler: Converts one file format into a Document
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VisionService: Image descriptions. Without it, images are indexed without one.
//   - OCREngine: Text extraction from images. Without it, no extracted text.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or handler package
package driven
