package domain

import (
	"fmt"
	"time"
)

// StoreBackend selects the vector index implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite persists vectors in a SQLite file inside the store directory.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendMemory keeps vectors in memory for the process lifetime.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendSQLite || b == StoreBackendMemory
}

// EmbeddingProvider identifies the service that produces vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderLexical is the built-in hashed bag-of-words embedder.
	EmbeddingProviderLexical EmbeddingProvider = "lexical"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderLexical, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderLexical:
		return "Lexical (built-in, offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return "Unknown"
	}
}

// StoreSettings locates and selects the vector store.
type StoreSettings struct {
	Path    string
	Backend StoreBackend
	// MustExist opens an existing store only. Commands that never write
	// set it so a mistyped path fails instead of creating an empty store.
	MustExist bool
}

// BatchSettings controls write batching.
type BatchSettings struct {
	// Size is the pending batch length that triggers a flush.
	Size int

	// FlushInterval is the period of the background flush; zero disables it.
	FlushInterval time.Duration

	// MaxPending caps records waiting for or undergoing a flush. Zero means
	// DefaultMaxPendingBatches batches of Size.
	MaxPending int
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Limit is the default number of results.
	Limit int

	// MinScore drops results scoring at or below it.
	MinScore float64
}

// ChunkerSettings configures the heading chunker.
type ChunkerSettings struct {
	// MaxChunkSize splits sections longer than this many characters; 0 disables.
	MaxChunkSize int
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider          EmbeddingProvider
	Model             string
	BaseURL           string
	APIKey            string
	Dimensions        int
	RequestsPerSecond float64
	Burst             int
}

// CacheSettings configures every ResultCache instance.
type CacheSettings struct {
	Enabled    bool
	MaxEntries int
	TTL        time.Duration
}

// VisionSettings configures image description.
type VisionSettings struct {
	Model   string
	BaseURL string
	APIKey  string
}

// OCRSettings configures the OCR engine.
type OCRSettings struct {
	Command  string
	Language string
}

// ServerSettings configures the HTTP service.
type ServerSettings struct {
	Addr string
}

// Settings is the validated application configuration.
type Settings struct {
	Store     StoreSettings
	Batch     BatchSettings
	Search    SearchSettings
	Chunker   ChunkerSettings
	Embedding EmbeddingSettings
	Cache     CacheSettings
	Vision    VisionSettings
	OCR       OCRSettings
	Server    ServerSettings
}

// Default settings values.
const (
	DefaultBatchSize         = 32
	DefaultMaxPendingBatches = 8
	DefaultFlushInterval     = 5 * time.Second
	DefaultSearchLimit       = 5
	DefaultCacheMaxEntries   = 1000
	DefaultCacheTTL          = 24 * time.Hour
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 10
	DefaultVisionModel       = "gpt-4o-mini"
	DefaultOCRCommand        = "tesseract"
	DefaultOCRLanguage       = "eng"
	DefaultServerAddr        = "127.0.0.1:8765"
)

// DefaultSettings returns settings with every default applied.
// The store path is left empty; the loader fills it from the home directory.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{Backend: StoreBackendSQLite},
		Batch: BatchSettings{
			Size:          DefaultBatchSize,
			FlushInterval: DefaultFlushInterval,
		},
		Search: SearchSettings{Limit: DefaultSearchLimit},
		Embedding: EmbeddingSettings{
			Provider:          EmbeddingProviderLexical,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Cache: CacheSettings{
			Enabled:    true,
			MaxEntries: DefaultCacheMaxEntries,
			TTL:        DefaultCacheTTL,
		},
		Vision: VisionSettings{Model: DefaultVisionModel},
		OCR: OCRSettings{
			Command:  DefaultOCRCommand,
			Language: DefaultOCRLanguage,
		},
		Server: ServerSettings{Addr: DefaultServerAddr},
	}
}

// Validate checks settings for values the application cannot run with.
func (s Settings) Validate() error {
	if s.Store.Path == "" {
		return fmt.Errorf("%w: store path is required", ErrInvalidInput)
	}
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidInput, s.Store.Backend)
	}
	if s.Batch.Size <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidInput, s.Batch.Size)
	}
	if s.Batch.MaxPending < 0 || (s.Batch.MaxPending > 0 && s.Batch.MaxPending < s.Batch.Size) {
		return fmt.Errorf("%w: max pending must be 0 or at least the batch size (%d), got %d",
			ErrInvalidInput, s.Batch.Size, s.Batch.MaxPending)
	}
	if s.Batch.FlushInterval < 0 {
		return fmt.Errorf("%w: flush interval must not be negative", ErrInvalidInput)
	}
	if s.Search.Limit <= 0 {
		return fmt.Errorf("%w: search limit must be positive, got %d", ErrInvalidInput, s.Search.Limit)
	}
	if s.Search.MinScore < 0 || s.Search.MinScore >= 100 {
		return fmt.Errorf("%w: min score must be in [0, 100), got %v", ErrInvalidInput, s.Search.MinScore)
	}
	if s.Chunker.MaxChunkSize < 0 {
		return fmt.Errorf("%w: max chunk size must not be negative", ErrInvalidInput)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Cache.MaxEntries <= 0 {
		return fmt.Errorf("%w: cache max entries must be positive, got %d", ErrInvalidInput, s.Cache.MaxEntries)
	}
	if s.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidInput)
	}
	return nil
}
