// Package ai provides factory functions for creating provider adapters
// (embedding, vision, OCR and the vector index) from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/nova/internal/adapters/driven/embedding/lexical"
	ollamaembed "github.com/custodia-labs/nova/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/nova/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/nova/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/nova/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nova/internal/adapters/driven/storage/sqlite"
	openaivision "github.com/custodia-labs/nova/internal/adapters/driven/vision/openai"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/logger"
	"github.com/custodia-labs/nova/internal/ratelimit"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the providers built from one Settings value.
// Vision and OCR are nil when unavailable.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	VectorIndex      driven.VectorIndex
	VisionService    driven.VisionService
	OCREngine        driven.OCREngine
	Warnings         []string // Non-fatal issues that disabled an optional provider.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
}

// Init creates every provider. Embedding and index failures are fatal;
// a missing vision key or OCR binary only adds a warning.
func Init(settings domain.Settings) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, err
	}

	index, err := CreateVectorIndex(settings.Store)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	result := &InitResult{EmbeddingService: embedder, VectorIndex: index}

	vision, err := CreateVisionService(settings.Vision, settings.Embedding)
	switch {
	case err == nil:
		result.VisionService = vision
	case errors.Is(err, domain.ErrVisionUnavailable):
		result.Warnings = append(result.Warnings, "image descriptions disabled: no vision API key")
	default:
		result.Close()
		return nil, err
	}

	engine, err := CreateOCREngine(settings.OCR)
	switch {
	case err == nil:
		result.OCREngine = engine
	case tesseract.IsUnavailable(err):
		result.Warnings = append(result.Warnings, fmt.Sprintf("OCR disabled: %s not found", settings.OCR.Command))
	default:
		result.Close()
		return nil, err
	}

	for _, w := range result.Warnings {
		logger.Debug("%s", w)
	}
	return result, nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	limit := ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		BurstSize:         settings.Burst,
	}

	switch settings.Provider {
	case domain.EmbeddingProviderLexical, "":
		return lexical.NewEmbeddingService(settings.Dimensions), nil

	case domain.EmbeddingProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			RateLimit:  limit,
		}), nil

	case domain.EmbeddingProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			RateLimit:  limit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateVectorIndex opens the index backend selected by settings.
func CreateVectorIndex(settings domain.StoreSettings) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		if settings.MustExist {
			return sqlite.OpenVectorIndex(settings.Path)
		}
		return sqlite.NewVectorIndex(settings.Path)
	case domain.StoreBackendMemory:
		return memory.NewVectorIndex(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported store backend: %s", domain.ErrInvalidInput, settings.Backend)
	}
}

// CreateVisionService creates the OpenAI vision service. It shares the
// embedding rate limit and returns domain.ErrVisionUnavailable without a key.
func CreateVisionService(settings domain.VisionSettings, embedding domain.EmbeddingSettings) (driven.VisionService, error) {
	svc, err := openaivision.NewVisionService(openaivision.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: embedding.RequestsPerSecond,
			BurstSize:         embedding.Burst,
		},
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateOCREngine creates the tesseract engine. It returns
// domain.ErrOCRUnavailable when the binary is not installed.
func CreateOCREngine(settings domain.OCRSettings) (driven.OCREngine, error) {
	engine, err := tesseract.New(tesseract.Config{
		Command:  settings.Command,
		Language: settings.Language,
	})
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// ValidateEmbeddingConfig creates the configured embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return nil
}
