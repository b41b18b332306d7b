// Package servicetest provides embedders and fixtures for testing code
// built on the vector store without a real embedding provider.
package servicetest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure VocabEmbedder implements the interface.
var _ driven.EmbeddingService = (*VocabEmbedder)(nil)

// VocabEmbedder gives every distinct token its own dimension, assigned on
// first sight, so texts without shared words are exactly orthogonal.
// Texts containing a token listed in Fail return a provider error, and
// FailBatch makes every EmbedBatch call fail.
type VocabEmbedder struct {
	Dims      int
	Fail      map[string]bool
	FailBatch bool

	// Block, when set, is received from before each embedding call.
	Block chan struct{}
	// Entered, when set, is signalled as each embedding call starts.
	Entered chan struct{}

	mu         sync.Mutex
	vocab      map[string]int
	batchCalls int
	calls      int
}

// NewVocabEmbedder creates an embedder with room for dims distinct tokens.
func NewVocabEmbedder(dims int) *VocabEmbedder {
	return &VocabEmbedder{Dims: dims, Fail: map[string]bool{}}
}

// Embed maps text to a normalised token-count vector.
func (e *VocabEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.wait(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("vocab: %w", domain.ErrNothingToEmbed)
	}
	if e.vocab == nil {
		e.vocab = make(map[string]int)
	}

	vec := make([]float32, e.Dims)
	for _, tok := range tokens {
		if e.Fail[tok] {
			return nil, fmt.Errorf("%w: refused %q", domain.ErrProvider, tok)
		}
		i, ok := e.vocab[tok]
		if !ok {
			i = len(e.vocab)
			if i >= e.Dims {
				return nil, fmt.Errorf("%w: vocabulary full", domain.ErrProvider)
			}
			e.vocab[tok] = i
		}
		vec[i]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// EmbedBatch embeds all texts, failing as a whole if any text fails.
func (e *VocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batchCalls++
	failBatch := e.FailBatch
	e.mu.Unlock()

	if failBatch {
		return nil, fmt.Errorf("%w: batch endpoint down", domain.ErrProvider)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// BatchCalls returns how many EmbedBatch calls were made.
func (e *VocabEmbedder) BatchCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchCalls
}

// Dimensions returns Dims.
func (e *VocabEmbedder) Dimensions() int { return e.Dims }

// ModelName returns "vocab".
func (e *VocabEmbedder) ModelName() string { return "vocab" }

// Ping always succeeds.
func (e *VocabEmbedder) Ping(context.Context) error { return nil }

// Close releases nothing.
func (e *VocabEmbedder) Close() error { return nil }

func (e *VocabEmbedder) wait(ctx context.Context) {
	if e.Entered != nil {
		select {
		case e.Entered <- struct{}{}:
		default:
		}
	}
	if e.Block != nil {
		select {
		case <-e.Block:
		case <-ctx.Done():
		}
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Note is one fixture record.
type Note struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Notes are three single-section notes tagged python/programming,
// ml/ai/tech and testing/dev.
var Notes = []Note{
	{
		ID:      "test1",
		Content: "Python is a great programming language",
		Metadata: map[string]string{
			domain.MetaSource:       "test1.md",
			domain.MetaHeading:      "Programming",
			domain.MetaHeadingLevel: "1",
			domain.MetaTags:         `["python","programming"]`,
			domain.MetaAttachments:  "[]",
		},
	},
	{
		ID:      "test2",
		Content: "Machine learning is transforming technology",
		Metadata: map[string]string{
			domain.MetaSource:       "test2.md",
			domain.MetaHeading:      "AI/ML",
			domain.MetaHeadingLevel: "1",
			domain.MetaTags:         `["ml","ai","tech"]`,
			domain.MetaAttachments:  "[]",
		},
	},
	{
		ID:      "test3",
		Content: "Testing ensures code quality",
		Metadata: map[string]string{
			domain.MetaSource:       "test3.md",
			domain.MetaHeading:      "Development",
			domain.MetaHeadingLevel: "1",
			domain.MetaTags:         `["testing","dev"]`,
			domain.MetaAttachments:  "[]",
		},
	},
}

// Adder is the write side of a vector store.
type Adder interface {
	Add(ctx context.Context, id, content string, metadata map[string]string) (string, error)
	Flush(ctx context.Context) (domain.FlushResult, error)
}

// Seed adds Notes and flushes them.
func Seed(ctx context.Context, store Adder) error {
	for _, n := range Notes {
		if _, err := store.Add(ctx, n.ID, n.Content, n.Metadata); err != nil {
			return err
		}
	}
	result, err := store.Flush(ctx)
	if err != nil {
		return err
	}
	if failed := result.Failed(); len(failed) > 0 {
		return fmt.Errorf("seed: %s: %w", failed[0].ID, failed[0].Err)
	}
	return nil
}
