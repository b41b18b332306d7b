package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/postprocessors/chunker"
)

// DefaultChunker is the name of the heading chunker.
const DefaultChunker = "chunker"

// RegisterDefaults registers all built-in chunkers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultChunker, buildChunker)
}

// buildChunker creates the heading chunker from generic config.
// Supported config keys:
//   - max_chunk_size (int): split sections longer than this (default: 0, never)
func buildChunker(cfg map[string]any) (driven.Chunker, error) {
	var opts []chunker.Option

	if cfg != nil {
		size, err := getIntFromConfig(cfg, "max_chunk_size")
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, fmt.Errorf("max_chunk_size must not be negative, got %d", size)
		}
		opts = append(opts, chunker.WithMaxChunkSize(size))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, nil
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: expected integer, got %T", key, val)
	}
}
