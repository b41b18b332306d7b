package file

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Environment variables consulted by LoadSettings.
const (
	EnvStore             = "NOVA_STORE"
	EnvEmbeddingProvider = "NOVA_EMBEDDING_PROVIDER"
	EnvOpenAIKey         = "OPENAI_API_KEY"
)

// Kind is the value type of a configuration key.
type Kind int

// Key kinds.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindDuration:
		return "duration"
	default:
		return "string"
	}
}

type keySpec struct {
	kind   Kind
	secret bool
	apply  func(s *domain.Settings, v any)
}

var keys = map[string]keySpec{
	"store.path":    {kind: KindString, apply: func(s *domain.Settings, v any) { s.Store.Path = v.(string) }},
	"store.backend": {kind: KindString, apply: func(s *domain.Settings, v any) { s.Store.Backend = domain.StoreBackend(v.(string)) }},

	"batch.size":           {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Batch.Size = v.(int) }},
	"batch.flush_interval": {kind: KindDuration, apply: func(s *domain.Settings, v any) { s.Batch.FlushInterval = v.(time.Duration) }},
	"batch.max_pending":    {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Batch.MaxPending = v.(int) }},

	"search.limit":     {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Search.Limit = v.(int) }},
	"search.min_score": {kind: KindFloat, apply: func(s *domain.Settings, v any) { s.Search.MinScore = v.(float64) }},

	"chunker.max_chunk_size": {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Chunker.MaxChunkSize = v.(int) }},

	"embedding.provider": {kind: KindString, apply: func(s *domain.Settings, v any) {
		s.Embedding.Provider = domain.EmbeddingProvider(v.(string))
	}},
	"embedding.model":               {kind: KindString, apply: func(s *domain.Settings, v any) { s.Embedding.Model = v.(string) }},
	"embedding.base_url":            {kind: KindString, apply: func(s *domain.Settings, v any) { s.Embedding.BaseURL = v.(string) }},
	"embedding.api_key":             {kind: KindString, secret: true, apply: func(s *domain.Settings, v any) { s.Embedding.APIKey = v.(string) }},
	"embedding.dimensions":          {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Embedding.Dimensions = v.(int) }},
	"embedding.requests_per_second": {kind: KindFloat, apply: func(s *domain.Settings, v any) { s.Embedding.RequestsPerSecond = v.(float64) }},
	"embedding.burst":               {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Embedding.Burst = v.(int) }},

	"cache.enabled":     {kind: KindBool, apply: func(s *domain.Settings, v any) { s.Cache.Enabled = v.(bool) }},
	"cache.max_entries": {kind: KindInt, apply: func(s *domain.Settings, v any) { s.Cache.MaxEntries = v.(int) }},
	"cache.ttl":         {kind: KindDuration, apply: func(s *domain.Settings, v any) { s.Cache.TTL = v.(time.Duration) }},

	"vision.model":    {kind: KindString, apply: func(s *domain.Settings, v any) { s.Vision.Model = v.(string) }},
	"vision.base_url": {kind: KindString, apply: func(s *domain.Settings, v any) { s.Vision.BaseURL = v.(string) }},
	"vision.api_key":  {kind: KindString, secret: true, apply: func(s *domain.Settings, v any) { s.Vision.APIKey = v.(string) }},

	"ocr.command":  {kind: KindString, apply: func(s *domain.Settings, v any) { s.OCR.Command = v.(string) }},
	"ocr.language": {kind: KindString, apply: func(s *domain.Settings, v any) { s.OCR.Language = v.(string) }},

	"server.addr": {kind: KindString, apply: func(s *domain.Settings, v any) { s.Server.Addr = v.(string) }},
}

// Keys returns every recognised configuration key in sorted order.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KeyKind returns the value kind of key.
func KeyKind(key string) (Kind, bool) {
	def, ok := keys[key]
	return def.kind, ok
}

// IsSecret reports whether key holds a credential that should be masked.
func IsSecret(key string) bool {
	return keys[key].secret
}

// ParseValue converts a command-line string into the value stored for key.
// Durations are stored as strings so the file stays readable.
func ParseValue(key, raw string) (any, error) {
	def, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	switch def.kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case KindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s must be a duration such as 5s or 24h", domain.ErrInvalidInput, key)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// LoadSettings builds settings from defaults, then the config store, then
// the environment. An empty store path falls back to defaultDir/vectors.
// The result is not validated; callers apply flag overrides first.
func LoadSettings(cfg driven.ConfigStore, getenv func(string) string, defaultDir string) (domain.Settings, error) {
	s := domain.DefaultSettings()

	for _, key := range Keys() {
		raw, ok := cfg.Get(key)
		if !ok {
			continue
		}
		def := keys[key]
		v, err := coerce(def.kind, raw)
		if err != nil {
			return s, fmt.Errorf("%w: %s in %s: %w", domain.ErrInvalidInput, key, cfg.Path(), err)
		}
		def.apply(&s, v)
	}

	if v := getenv(EnvStore); v != "" {
		s.Store.Path = v
	}
	if v := getenv(EnvEmbeddingProvider); v != "" {
		s.Embedding.Provider = domain.EmbeddingProvider(v)
	}
	if v := getenv(EnvOpenAIKey); v != "" {
		if s.Embedding.APIKey == "" {
			s.Embedding.APIKey = v
		}
		if s.Vision.APIKey == "" {
			s.Vision.APIKey = v
		}
	}

	if s.Store.Path == "" && defaultDir != "" {
		s.Store.Path = filepath.Join(defaultDir, "vectors")
	}
	return s, nil
}

// coerce converts a decoded TOML value to the Go type apply expects.
func coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	case KindInt:
		switch v := raw.(type) {
		case int64:
			return int(v), nil
		case int:
			return v, nil
		}
	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case KindBool:
		if v, ok := raw.(bool); ok {
			return v, nil
		}
	case KindDuration:
		switch v := raw.(type) {
		case string:
			return time.ParseDuration(v)
		case int64:
			return time.Duration(v) * time.Second, nil
		case int:
			return time.Duration(v) * time.Second, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, raw)
}
