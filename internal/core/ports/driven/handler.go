package driven

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// Handler converts one family of file formats into a Document.
// Handlers are tried in a fixed priority order and the first
// whose Detect returns true processes the file.
type Handler interface {
	// Name identifies the handler in logs and reports.
	Name() string

	// Priority returns the selection priority (higher = tried first).
	// Format-specific handlers should return 50-89.
	// Fallback handlers should return 1-9.
	Priority() int

	// Detect reports whether the handler accepts the file.
	Detect(path string) bool

	// Process reads the file and returns its normalised document.
	Process(ctx context.Context, path string) (*domain.Document, error)
}

// HandlerRegistry selects the handler for a file.
type HandlerRegistry interface {
	// Register adds a handler to the registry.
	Register(h Handler)

	// Lookup returns the highest-priority handler that accepts path.
	// The boolean is false when no handler accepts it.
	Lookup(path string) (Handler, bool)

	// Handlers returns every registered handler in priority order.
	Handlers() []Handler
}
