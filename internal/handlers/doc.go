// Package handlers provides the format handlers that turn files into
// documents, and the registry that selects one per file.
//
// Handlers are tried in priority order (highest first); the first whose
// Detect accepts a file processes it. The plaintext handler is the
// fallback for text formats no specific handler claims.
package handlers
