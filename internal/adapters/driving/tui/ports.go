// Package tui provides an interactive terminal search over the vector store.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/nova/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Index, when set, supplies the store summary in the status bar.
	Index driving.IndexService

	// Limit is the initial number of results per query.
	Limit int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
