package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/core/ports/driving"
	"github.com/custodia-labs/nova/internal/logger"
	"github.com/custodia-labs/nova/internal/metrics"
)

// Ensure VectorStore implements the interface.
var _ driving.IndexService = (*VectorStore)(nil)

// RecordNamespace derives stable record ids with uuid.NewSHA1.
var RecordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/nova/records"))

// DeriveID returns the stable id for a name (content or source#sequence).
func DeriveID(name string) string {
	return uuid.NewSHA1(RecordNamespace, []byte(name)).String()
}

var errRemovedDuringFlush = fmt.Errorf("%w: removed while the batch was embedding", domain.ErrNotFound)

// VectorStoreConfig configures batching and ranking.
type VectorStoreConfig struct {
	// BatchSize is the pending length that triggers a background flush.
	BatchSize int

	// FlushInterval is the period of the background flush; zero disables it.
	FlushInterval time.Duration

	// MaxPending caps records waiting for or undergoing a flush. It
	// defaults to domain.DefaultMaxPendingBatches batches and is never
	// below BatchSize.
	MaxPending int

	// MinScore drops search results scoring at or below it.
	MinScore float64
}

type pendingRecord struct {
	id       string
	content  string
	metadata map[string]string
}

// VectorStore buffers additions and writes them to a VectorIndex in
// batches. It exclusively owns the index.
//
// Locking: mu guards the pending batch and bookkeeping and is never held
// across I/O. flushMu serialises flushes. searchMu is held shared by
// searches and exclusively while a batch or a removal is written, so a
// search never observes a half-written batch. Embedding runs outside all
// of them, so Add never waits for the provider.
type VectorStore struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	cfg      VectorStoreConfig

	mu         sync.Mutex
	pending    []pendingRecord
	position   map[string]int
	inflight   map[string]string // id -> source
	tombstones map[string]struct{}
	closed     bool

	flushMu  sync.Mutex
	searchMu sync.RWMutex

	trigger   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewVectorStore creates a store over index and starts its background flusher.
func NewVectorStore(index driven.VectorIndex, embedder driven.EmbeddingService, cfg VectorStoreConfig) *VectorStore {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = cfg.BatchSize * domain.DefaultMaxPendingBatches
	}
	cfg.MaxPending = max(cfg.MaxPending, cfg.BatchSize)

	s := &VectorStore{
		index:      index,
		embedder:   embedder,
		cfg:        cfg,
		position:   make(map[string]int),
		inflight:   make(map[string]string),
		tombstones: make(map[string]struct{}),
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.wg.Add(1)
	go s.flushLoop()
	return s
}

// Add enqueues a record candidate. Re-adding a pending id replaces it.
// Empty content is logged and skipped.
//
// When the backlog is at MaxPending, Add flushes in the caller's goroutine
// to make room. If that flush fails or leaves no room, the record is
// rejected with domain.ErrBacklogFull.
func (s *VectorStore) Add(ctx context.Context, id, content string, metadata map[string]string) (string, error) {
	if s.isClosed() {
		return "", domain.ErrStoreClosed
	}
	if id == "" {
		id = DeriveID(content)
	}
	if strings.TrimSpace(content) == "" {
		logger.Warn("Skipping %s: empty content", id)
		return id, nil
	}
	rec := pendingRecord{id: id, content: content, metadata: copyMetadata(metadata)}

	queued, full, err := s.enqueue(rec)
	if err != nil {
		return "", err
	}
	if !queued {
		if _, ferr := s.flush(ctx); ferr != nil {
			return "", fmt.Errorf("add %s: %w: %w", id, domain.ErrBacklogFull, ferr)
		}
		if queued, full, err = s.enqueue(rec); err != nil {
			return "", err
		}
		if !queued {
			return "", fmt.Errorf("add %s: %w: %d records waiting", id, domain.ErrBacklogFull, s.cfg.MaxPending)
		}
	}

	if full {
		select {
		case s.trigger <- struct{}{}:
		default:
		}
	}
	return id, nil
}

// enqueue places rec in the pending batch unless the backlog is at
// MaxPending. Replacing a pending id always succeeds.
func (s *VectorStore) enqueue(rec pendingRecord) (queued, full bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, false, domain.ErrStoreClosed
	}
	if i, ok := s.position[rec.id]; ok {
		s.pending[i] = rec
	} else {
		if s.backlog() >= s.cfg.MaxPending {
			return false, false, nil
		}
		s.position[rec.id] = len(s.pending)
		s.pending = append(s.pending, rec)
	}
	metrics.PendingRecords.Set(float64(len(s.pending)))
	return true, len(s.pending) >= s.cfg.BatchSize, nil
}

// backlog counts records pending or being flushed (caller holds mu).
func (s *VectorStore) backlog() int {
	n := len(s.pending)
	for id := range s.inflight {
		if _, ok := s.position[id]; !ok {
			n++
		}
	}
	return n
}

// Remove deletes id from the index and from the pending batch. A record
// still being embedded by a running flush is never written.
func (s *VectorStore) Remove(ctx context.Context, id string) error {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	s.dropPending(id)
	if _, ok := s.inflight[id]; ok {
		s.tombstones[id] = struct{}{}
	}
	s.mu.Unlock()

	if err := s.index.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// RemoveSource removes every record from source, whether indexed, pending
// or being embedded, and returns how many ids were removed.
func (s *VectorStore) RemoveSource(ctx context.Context, source string) (int, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}

	s.searchMu.RLock()
	indexed, err := s.index.IDs(ctx, source)
	s.searchMu.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("list records for %s: %w", source, err)
	}

	seen := make(map[string]struct{}, len(indexed))
	ids := make([]string, 0, len(indexed))
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, id := range indexed {
		add(id)
	}

	s.mu.Lock()
	for _, rec := range s.pending {
		if rec.metadata[domain.MetaSource] == source {
			add(rec.id)
		}
	}
	for id, src := range s.inflight {
		if src == source {
			add(id)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.Remove(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Flush embeds and writes every pending record. Items the provider cannot
// embed are dropped and reported in the result; a store write failure
// returns the whole batch to pending and fails with domain.ErrStoreIO.
func (s *VectorStore) Flush(ctx context.Context) (domain.FlushResult, error) {
	if s.isClosed() {
		return domain.FlushResult{}, domain.ErrStoreClosed
	}
	return s.flush(ctx)
}

func (s *VectorStore) flush(ctx context.Context) (domain.FlushResult, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.position = make(map[string]int)
	for _, rec := range batch {
		s.inflight[rec.id] = rec.metadata[domain.MetaSource]
	}
	metrics.PendingRecords.Set(0)
	s.mu.Unlock()

	if len(batch) == 0 {
		return domain.FlushResult{}, nil
	}

	logger.Section("Flush")
	logger.Debug("Embedding %d pending records", len(batch))

	vectors, errs := s.embedBatch(ctx, batch)
	if err := ctx.Err(); err != nil {
		s.restore(batch)
		return domain.FlushResult{}, fmt.Errorf("flush: %w", err)
	}

	s.searchMu.Lock()
	s.mu.Lock()
	result := domain.FlushResult{Items: make([]domain.ItemResult, len(batch))}
	records := make([]domain.IndexedRecord, 0, len(batch))
	for i, rec := range batch {
		result.Items[i].ID = rec.id
		if _, removed := s.tombstones[rec.id]; removed {
			result.Items[i].Err = errRemovedDuringFlush
			continue
		}
		if errs[i] != nil {
			result.Items[i].Err = errs[i]
			continue
		}
		meta := copyMetadata(rec.metadata)
		if meta == nil {
			meta = make(map[string]string, 1)
		}
		meta[domain.MetaContent] = rec.content
		records = append(records, domain.IndexedRecord{ID: rec.id, Vector: vectors[i], Metadata: meta})
	}
	s.mu.Unlock()

	err := s.index.Upsert(ctx, records)
	s.searchMu.Unlock()

	if err != nil {
		s.restore(batch)
		logger.Error("Flush failed, %d records returned to pending: %v", len(batch), err)
		if !errors.Is(err, domain.ErrStoreIO) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreIO, err)
		}
		return domain.FlushResult{}, fmt.Errorf("flush: %w", err)
	}

	s.mu.Lock()
	for _, rec := range batch {
		delete(s.inflight, rec.id)
		delete(s.tombstones, rec.id)
	}
	s.mu.Unlock()

	for _, item := range result.Failed() {
		if !errors.Is(item.Err, errRemovedDuringFlush) {
			logger.Warn("Dropped %s: %v", item.ID, item.Err)
		}
	}
	metrics.FlushItems.WithLabelValues(metrics.FlushIndexed).Add(float64(result.Indexed()))
	metrics.FlushItems.WithLabelValues(metrics.FlushDropped).Add(float64(len(result.Failed())))
	logger.Info("Flushed %d records (%d dropped)", result.Indexed(), len(result.Failed()))

	return result, nil
}

// embedBatch embeds every record with one batch call, falling back to
// per-item calls when the batch call fails so one bad input cannot sink
// the rest. errs[i] is non-nil for each record that must be dropped.
func (s *VectorStore) embedBatch(ctx context.Context, batch []pendingRecord) ([][]float32, []error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.content
	}
	errs := make([]error, len(batch))

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) != len(texts) {
		err = fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrProvider, len(vectors), len(texts))
	}
	if err != nil {
		logger.Debug("Batch embedding failed, retrying per item: %v", err)
		vectors = make([][]float32, len(texts))
		for i, text := range texts {
			vec, err := s.embedder.Embed(ctx, text)
			if err != nil {
				if !errors.Is(err, domain.ErrProvider) {
					err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
				}
				errs[i] = err
				continue
			}
			vectors[i] = vec
		}
	}

	want := s.embedder.Dimensions()
	for i, vec := range vectors {
		switch {
		case errs[i] != nil:
		case len(vec) == 0:
			errs[i] = fmt.Errorf("%w: empty embedding", domain.ErrProvider)
		case want > 0 && len(vec) != want:
			errs[i] = fmt.Errorf("%w: embedding has %d dimensions, want %d", domain.ErrProvider, len(vec), want)
		}
	}
	return vectors, errs
}

// restore returns a failed batch to the front of pending. Ids re-added or
// removed meanwhile keep their newer state.
func (s *VectorStore) restore(batch []pendingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]pendingRecord, 0, len(batch)+len(s.pending))
	for _, rec := range batch {
		delete(s.inflight, rec.id)
		if _, removed := s.tombstones[rec.id]; removed {
			delete(s.tombstones, rec.id)
			continue
		}
		if _, newer := s.position[rec.id]; newer {
			continue
		}
		merged = append(merged, rec)
	}
	merged = append(merged, s.pending...)

	s.pending = merged
	s.position = make(map[string]int, len(merged))
	for i, rec := range merged {
		s.position[rec.id] = i
	}
	metrics.PendingRecords.Set(float64(len(s.pending)))
}

// query embeds text and returns up to k scored results in index order.
func (s *VectorStore) query(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	if s.isClosed() {
		return nil, domain.ErrStoreClosed
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.searchMu.RLock()
	hits, err := s.index.Query(ctx, vec, k)
	s.searchMu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			ID:      hit.ID,
			Score:   NormalizeScore(hit.Distance),
			Heading: hit.Metadata[domain.MetaHeading],
			Content: hit.Metadata[domain.MetaContent],
			Source:  hit.Metadata[domain.MetaSource],
		}
	}
	return results, nil
}

// MinScore returns the configured score threshold.
func (s *VectorStore) MinScore() float64 {
	return s.cfg.MinScore
}

// Pending returns the number of records waiting for a flush.
func (s *VectorStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stats summarises the store.
func (s *VectorStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	s.searchMu.RLock()
	records, sources, err := s.index.Stats(ctx)
	s.searchMu.RUnlock()
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("stats: %w", err)
	}
	return domain.StoreStats{Records: records, Sources: sources, Pending: s.Pending()}, nil
}

// Close stops the background flusher, flushes what is pending and closes
// the index. Calling Close more than once is safe.
func (s *VectorStore) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.wg.Wait()

		if _, ferr := s.flush(ctx); ferr != nil {
			err = ferr
		}
		if cerr := s.index.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing index: %w", domain.ErrStoreIO, cerr)
		}
	})
	return err
}

func (s *VectorStore) flushLoop() {
	defer s.wg.Done()

	var tick <-chan time.Time
	if s.cfg.FlushInterval > 0 {
		ticker := time.NewTicker(s.cfg.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-s.done:
			return
		case <-s.trigger:
		case <-tick:
		}
		if _, err := s.flush(context.Background()); err != nil {
			logger.Error("Background flush: %v", err)
		}
	}
}

func (s *VectorStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// dropPending removes id from the pending batch (caller holds mu).
func (s *VectorStore) dropPending(id string) {
	i, ok := s.position[id]
	if !ok {
		return
	}
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	delete(s.position, id)
	for j := i; j < len(s.pending); j++ {
		s.position[s.pending[j].id] = j
	}
	metrics.PendingRecords.Set(float64(len(s.pending)))
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
