package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/logger"
)

// FileFilter decides which files under a root are indexed. Patterns use
// doublestar syntax and are matched against the slash-separated path
// relative to the root, then against the base name.
type FileFilter struct {
	include []string
	exclude []string
}

// NewFileFilter validates the patterns and builds a filter. An empty
// include list accepts every file not excluded.
func NewFileFilter(include, exclude []string) (*FileFilter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: bad glob pattern %q", domain.ErrInvalidInput, p)
		}
	}
	return &FileFilter{include: include, exclude: exclude}, nil
}

// Match reports whether the file at rel should be indexed.
func (f *FileFilter) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if isHidden(rel) {
		return false
	}
	for _, pattern := range f.exclude {
		if matches(pattern, rel) {
			logger.Debug("File excluded by pattern: path=%s pattern=%s", rel, pattern)
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matches(pattern, rel) {
			return true
		}
	}
	return false
}

func matches(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, filepath.Base(rel))
	return ok
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
