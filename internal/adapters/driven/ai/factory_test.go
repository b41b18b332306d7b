package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/adapters/driven/embedding/lexical"
	"github.com/custodia-labs/nova/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.EmbeddingSettings
		wantModel string
		wantErr   error
	}{
		{
			name:      "empty provider defaults to lexical",
			settings:  domain.EmbeddingSettings{},
			wantModel: lexical.ModelName,
		},
		{
			name:      "lexical provider",
			settings:  domain.EmbeddingSettings{Provider: domain.EmbeddingProviderLexical, Dimensions: 64},
			wantModel: lexical.ModelName,
		},
		{
			name: "ollama provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
		},
		{
			name:     "openai without key is unavailable",
			settings: domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI},
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
		{
			name:     "unknown provider",
			settings: domain.EmbeddingSettings{Provider: "anthropic"},
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService_LexicalDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.EmbeddingProviderLexical, Dimensions: 64})
	require.NoError(t, err)
	assert.Equal(t, 64, svc.Dimensions())
}

func TestCreateVectorIndex(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		index, err := CreateVectorIndex(domain.StoreSettings{Path: t.TempDir(), Backend: domain.StoreBackendSQLite})
		require.NoError(t, err)
		defer index.Close()

		records, sources, err := index.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, records)
		assert.Zero(t, sources)
	})

	t.Run("sqlite must exist", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing")

		_, err := CreateVectorIndex(domain.StoreSettings{Path: dir, Backend: domain.StoreBackendSQLite, MustExist: true})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoDirExists(t, dir)
	})

	t.Run("memory", func(t *testing.T) {
		index, err := CreateVectorIndex(domain.StoreSettings{Backend: domain.StoreBackendMemory})
		require.NoError(t, err)
		assert.NoError(t, index.Close())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := CreateVectorIndex(domain.StoreSettings{Path: t.TempDir(), Backend: "qdrant"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCreateVisionService(t *testing.T) {
	_, err := CreateVisionService(domain.VisionSettings{Model: "gpt-4o-mini"}, domain.EmbeddingSettings{})
	assert.ErrorIs(t, err, domain.ErrVisionUnavailable)

	svc, err := CreateVisionService(domain.VisionSettings{APIKey: "test-key"}, domain.EmbeddingSettings{})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateOCREngine_MissingBinary(t *testing.T) {
	engine, err := CreateOCREngine(domain.OCRSettings{Command: "nova-no-such-ocr-binary"})
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
	assert.Nil(t, engine)
}

func TestInit_DegradesOptionalProviders(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Store = domain.StoreSettings{Path: filepath.Join(t.TempDir(), "vectors"), Backend: domain.StoreBackendSQLite}
	settings.OCR.Command = "nova-no-such-ocr-binary"

	result, err := Init(settings)
	require.NoError(t, err)
	defer result.Close()

	assert.NotNil(t, result.EmbeddingService)
	assert.NotNil(t, result.VectorIndex)
	assert.Nil(t, result.VisionService)
	assert.Nil(t, result.OCREngine)
	assert.Len(t, result.Warnings, 2)
}

func TestInit_BadBackend(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Store = domain.StoreSettings{Path: t.TempDir(), Backend: "nope"}

	_, err := Init(settings)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateEmbeddingConfig(t *testing.T) {
	t.Run("lexical always validates", func(t *testing.T) {
		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{Provider: domain.EmbeddingProviderLexical})
		assert.NoError(t, err)
	})

	t.Run("reachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
		})
		assert.NoError(t, err)
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		err := ValidateEmbeddingConfig(context.Background(), domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
