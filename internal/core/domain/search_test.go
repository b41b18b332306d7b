package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlushResult(t *testing.T) {
	boom := errors.New("boom")
	r := FlushResult{Items: []ItemResult{
		{ID: "a"},
		{ID: "b", Err: boom},
		{ID: "c"},
	}}

	assert.Equal(t, 2, r.Indexed())
	failed := r.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ID)
	assert.False(t, failed[0].OK())
}

func TestFlushResult_Empty(t *testing.T) {
	var r FlushResult
	assert.Zero(t, r.Indexed())
	assert.Empty(t, r.Failed())
}

func TestOCRResult_Empty(t *testing.T) {
	assert.True(t, OCRResult{}.Empty())
	assert.False(t, OCRResult{Text: "hello"}.Empty())
}

func TestNewSearchResponse(t *testing.T) {
	empty := NewSearchResponse(nil)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Results)

	r := NewSearchResponse([]SearchResult{{ID: "b", Score: 90}, {ID: "a", Score: 10}})
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, "b", r.Results[0].ID)
}
