// Package plaintext provides the fallback handler for text formats that
// no specific handler claims: plain text, source code and data files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure Handler implements the interface.
var _ driven.Handler = (*Handler)(nil)

var extensions = map[string]bool{
	".txt": true, ".text": true, ".log": true, ".rst": true, ".org": true,
	".csv": true, ".tsv": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".ini": true, ".xml": true, ".svg": true,
	".go": true, ".py": true, ".rs": true, ".java": true, ".c": true,
	".h": true, ".cpp": true, ".hpp": true, ".rb": true, ".sh": true,
	".sql": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".css": true,
}

// Handler handles plain text documents.
type Handler struct{}

// New creates a new plain text handler.
func New() *Handler {
	return &Handler{}
}

// Name returns "plaintext".
func (h *Handler) Name() string {
	return "plaintext"
}

// Priority returns the selection priority.
func (h *Handler) Priority() int {
	return 5 // Fallback handler
}

// Detect accepts known text extensions.
func (h *Handler) Detect(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Process reads the file as-is. Binary content is rejected with
// domain.ErrUnsupportedType.
func (h *Handler) Process(_ context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not text", domain.ErrUnsupportedType, filepath.Base(path))
	}

	return &domain.Document{
		URI:      path,
		Title:    extractTitle(path),
		Content:  string(data),
		Format:   h.Name(),
		ModTime:  info.ModTime(),
		Metadata: map[string]string{},
	}, nil
}

// extractTitle extracts a human-readable title from a path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
