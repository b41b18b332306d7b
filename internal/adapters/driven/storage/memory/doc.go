// Package memory provides in-memory implementations of the driven ports:
// a VectorIndex for the "memory" store backend and a ConfigStore for tests.
package memory
