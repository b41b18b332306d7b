package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/custodia-labs/nova/internal/cache"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/logger"
)

// ValidOCRResult rejects empty OCR results so they are never cached.
func ValidOCRResult(r domain.OCRResult) bool {
	return !r.Empty()
}

// OCRService extracts text from image files through an OCR engine,
// caching results by file fingerprint.
type OCRService struct {
	engine   driven.OCREngine
	cache    *cache.Cache[domain.OCRResult]
	language string

	warnOnce sync.Once
}

// NewOCRService creates an OCR service. engine and results may be nil:
// without an engine every file yields an empty result, and without a
// cache every file is processed afresh.
func NewOCRService(engine driven.OCREngine, results *cache.Cache[domain.OCRResult], language string) *OCRService {
	return &OCRService{engine: engine, cache: results, language: language}
}

// Available reports whether an OCR engine is configured.
func (s *OCRService) Available() bool {
	return s.engine != nil
}

// ProcessFile returns the text found in the image at path. An absent
// engine degrades to an empty result; engine failures wrap domain.ErrProvider.
func (s *OCRService) ProcessFile(ctx context.Context, path string) (domain.OCRResult, error) {
	if s.engine == nil {
		return domain.OCRResult{}, nil
	}

	key, err := cache.FingerprintFile(path, "ocr", s.language)
	if err != nil {
		return domain.OCRResult{}, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			logger.Debug("OCR cache hit for %s", path)
			return cached, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	result, err := s.engine.Process(ctx, data)
	if err != nil {
		if errors.Is(err, domain.ErrOCRUnavailable) {
			s.warnOnce.Do(func() {
				logger.Warn("OCR skipped: %v", err)
			})
			return domain.OCRResult{}, nil
		}
		if !errors.Is(err, domain.ErrProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		return domain.OCRResult{}, fmt.Errorf("ocr %s: %w", path, err)
	}

	if s.cache != nil {
		s.cache.Put(key, result)
	}
	return result, nil
}
