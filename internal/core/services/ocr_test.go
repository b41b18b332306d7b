package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/cache"
	"github.com/custodia-labs/nova/internal/core/domain"
)

type mockOCREngine struct {
	result domain.OCRResult
	err    error
	calls  int
}

func (m *mockOCREngine) Process(_ context.Context, image []byte) (domain.OCRResult, error) {
	m.calls++
	if m.err != nil {
		return domain.OCRResult{}, m.err
	}
	return m.result, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newOCRCache() *cache.Cache[domain.OCRResult] {
	return cache.New(cache.Config{Name: "ocr-test", Enabled: true}, ValidOCRResult)
}

func TestOCRService_CachesByFingerprint(t *testing.T) {
	engine := &mockOCREngine{result: domain.OCRResult{Text: "hello", Confidence: 0.9}}
	svc := NewOCRService(engine, newOCRCache(), "eng")
	path := writeFile(t, t.TempDir(), "scan.png", "image bytes")

	first, err := svc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello", first.Text)

	second, err := svc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.calls)

	// A modified file is a new fingerprint.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = svc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.calls)
}

func TestOCRService_EmptyResultsNotCached(t *testing.T) {
	engine := &mockOCREngine{}
	svc := NewOCRService(engine, newOCRCache(), "eng")
	path := writeFile(t, t.TempDir(), "blank.png", "image bytes")

	for i := 0; i < 2; i++ {
		result, err := svc.ProcessFile(context.Background(), path)
		require.NoError(t, err)
		assert.True(t, result.Empty())
	}
	assert.Equal(t, 2, engine.calls)
}

func TestOCRService_NoEngine(t *testing.T) {
	svc := NewOCRService(nil, nil, "eng")
	assert.False(t, svc.Available())

	result, err := svc.ProcessFile(context.Background(), "/does/not/matter.png")
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestOCRService_EngineUnavailableDegrades(t *testing.T) {
	engine := &mockOCREngine{err: domain.ErrOCRUnavailable}
	svc := NewOCRService(engine, nil, "eng")
	path := writeFile(t, t.TempDir(), "scan.png", "image bytes")

	result, err := svc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestOCRService_EngineFailure(t *testing.T) {
	engine := &mockOCREngine{err: errors.New("segfault")}
	svc := NewOCRService(engine, newOCRCache(), "eng")
	path := writeFile(t, t.TempDir(), "scan.png", "image bytes")

	_, err := svc.ProcessFile(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestOCRService_MissingFile(t *testing.T) {
	svc := NewOCRService(&mockOCREngine{}, nil, "eng")
	_, err := svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}
