package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG fake"), 0o600))
	return path
}

func TestNewVisionService_RequiresAPIKey(t *testing.T) {
	_, err := NewVisionService(Config{})
	assert.ErrorIs(t, err, domain.ErrVisionUnavailable)
}

func TestDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, Prompt, req.Messages[0].Content[0].Text)
		assert.True(t, strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A red bicycle.\n"}}]}`))
	}))
	defer srv.Close()

	svc, err := NewVisionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	desc, err := svc.Describe(context.Background(), writeImage(t, "bike.png"))
	require.NoError(t, err)
	assert.Equal(t, "A red bicycle.", desc)
}

func TestDescribe_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"image too large","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	svc, err := NewVisionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Describe(context.Background(), writeImage(t, "big.jpg"))
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestDescribe_MissingFile(t *testing.T) {
	svc, err := NewVisionService(Config{APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = svc.Describe(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", mimeType("a.PNG"))
	assert.Equal(t, "image/webp", mimeType("a.webp"))
	assert.Equal(t, "image/jpeg", mimeType("a.jpeg"))
}
