// Package app builds the explicit store handle every front end shares.
// One App is constructed per process and passed to the CLI commands, the
// MCP server, the HTTP service and the TUI, so all of them search through
// the same VectorStore.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/nova/internal/adapters/driven/ai"
	"github.com/custodia-labs/nova/internal/cache"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/core/services"
	"github.com/custodia-labs/nova/internal/handlers"
	"github.com/custodia-labs/nova/internal/handlers/html"
	"github.com/custodia-labs/nova/internal/handlers/image"
	"github.com/custodia-labs/nova/internal/handlers/markdown"
	"github.com/custodia-labs/nova/internal/handlers/plaintext"
	"github.com/custodia-labs/nova/internal/logger"
	"github.com/custodia-labs/nova/internal/postprocessors"
)

// Cache names, used as metric labels.
const (
	OCRCacheName   = "ocr"
	ImageCacheName = "image"
)

// App is the process-wide handle over the store and its collaborators.
type App struct {
	Settings domain.Settings
	Store    *services.VectorStore
	Search   *services.SearchService
	Images   *services.ImageDescriber
	OCR      *services.OCRService
	Handlers *handlers.Registry
	Chunker  driven.Chunker

	providers  *ai.InitResult
	ocrCache   *cache.Cache[domain.OCRResult]
	imageCache *cache.Cache[domain.ImageDescription]
}

// Option customises construction.
type Option func(*options)

type options struct {
	providers *ai.InitResult
}

// WithProviders uses already-built providers instead of creating them from
// settings. The App takes ownership and closes them.
func WithProviders(p *ai.InitResult) Option {
	return func(o *options) {
		o.providers = p
	}
}

// New validates settings and builds the App.
func New(settings domain.Settings, opts ...Option) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	providers := o.providers
	if providers == nil {
		var err error
		providers, err = ai.Init(settings)
		if err != nil {
			return nil, err
		}
	}

	chunker, err := buildChunker(settings.Chunker)
	if err != nil {
		providers.Close()
		return nil, err
	}

	cacheCfg := func(name string) cache.Config {
		return cache.Config{
			Name:       name,
			Enabled:    settings.Cache.Enabled,
			MaxEntries: settings.Cache.MaxEntries,
			TTL:        settings.Cache.TTL,
		}
	}
	ocrCache := cache.New(cacheCfg(OCRCacheName), services.ValidOCRResult)
	imageCache := cache.New(cacheCfg(ImageCacheName), services.ValidImageDescription)

	ocr := services.NewOCRService(providers.OCREngine, ocrCache, settings.OCR.Language)
	images := services.NewImageDescriber(providers.VisionService, imageCache, settings.Vision.Model)

	registry := handlers.NewRegistry(
		markdown.New(),
		html.New(),
		image.New(images, ocr),
		plaintext.New(),
	)

	store := services.NewVectorStore(providers.VectorIndex, providers.EmbeddingService, services.VectorStoreConfig{
		BatchSize:     settings.Batch.Size,
		FlushInterval: settings.Batch.FlushInterval,
		MaxPending:    settings.Batch.MaxPending,
		MinScore:      settings.Search.MinScore,
	})

	logger.Debug("App: store=%s backend=%s embedding=%s", settings.Store.Path, settings.Store.Backend,
		providers.EmbeddingService.ModelName())

	return &App{
		Settings:   settings,
		Store:      store,
		Search:     services.NewSearchService(store, settings.Search.Limit),
		Images:     images,
		OCR:        ocr,
		Handlers:   registry,
		Chunker:    chunker,
		providers:  providers,
		ocrCache:   ocrCache,
		imageCache: imageCache,
	}, nil
}

func buildChunker(settings domain.ChunkerSettings) (driven.Chunker, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	return registry.Build(postprocessors.DefaultChunker, map[string]any{
		"max_chunk_size": settings.MaxChunkSize,
	})
}

// NewIndexer creates an indexer over the shared store.
func (a *App) NewIndexer(cfg services.IndexerConfig) (*services.Indexer, error) {
	return services.NewIndexer(a.Store, a.Handlers, a.Chunker, cfg)
}

// Warnings lists optional providers that were disabled.
func (a *App) Warnings() []string {
	return a.providers.Warnings
}

// SweepCaches removes expired and invalid entries from every result cache
// and returns how many were removed.
func (a *App) SweepCaches() int {
	return a.ocrCache.Sweep() + a.imageCache.Sweep()
}

// RunSweeper sweeps the caches every interval until ctx is done.
func (a *App) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.SweepCaches(); n > 0 {
				logger.Debug("Cache sweep removed %d entries", n)
			}
		}
	}
}

// Close flushes pending records and releases the store and providers.
func (a *App) Close(ctx context.Context) error {
	err := a.Store.Close(ctx)
	if a.providers.EmbeddingService != nil {
		err = errors.Join(err, a.providers.EmbeddingService.Close())
	}
	return err
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying a.
func WithContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the App stored in ctx.
func FromContext(ctx context.Context) (*App, bool) {
	a, ok := ctx.Value(contextKey{}).(*App)
	return a, ok
}
