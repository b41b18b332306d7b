// Package mcp provides an MCP (Model Context Protocol) server adapter for Nova.
// It lets AI assistants search the vector store and write to it through the
// same services the command line uses.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrReadOnly is returned by write tools when no index service is configured.
var ErrReadOnly = errors.New("mcp: store is read-only")
