package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/logger"
)

// Progress receives per-file progress from an index run.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)  {}
func (noProgress) Increment() {}
func (noProgress) Finish()    {}

// IndexerConfig holds file selection patterns.
type IndexerConfig struct {
	Include []string
	Exclude []string
}

// Indexer turns files into records: handler, chunker, then the vector store.
type Indexer struct {
	store    *VectorStore
	handlers driven.HandlerRegistry
	chunker  driven.Chunker
	filter   *FileFilter
}

// NewIndexer creates an indexer writing to store.
func NewIndexer(store *VectorStore, handlers driven.HandlerRegistry, chunker driven.Chunker, cfg IndexerConfig) (*Indexer, error) {
	filter, err := NewFileFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Indexer{store: store, handlers: handlers, chunker: chunker, filter: filter}, nil
}

// ChunkID returns the record id of the chunk at sequence within source.
func ChunkID(source string, sequence int) string {
	return DeriveID(source + "#" + strconv.Itoa(sequence))
}

// Index indexes root, a file or a directory tree, then flushes. Files no
// handler accepts are skipped; files whose handler fails are counted as
// failed. Only a cancelled context or a store failure aborts the run.
func (ix *Indexer) Index(ctx context.Context, root string, progress Progress) (*domain.IndexReport, error) {
	if progress == nil {
		progress = noProgress{}
	}

	files, err := ix.collect(root)
	if err != nil {
		return nil, err
	}

	logger.Section("Index")
	logger.Info("Indexing %d files under %s", len(files), root)

	report := domain.NewIndexReport()
	progress.Start(len(files))
	defer progress.Finish()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ext := strings.ToLower(filepath.Ext(path))
		handler, chunks, err := ix.IndexFile(ctx, path)
		switch {
		case errors.Is(err, domain.ErrUnsupportedType):
			logger.Debug("No handler found for %s", path)
			report.Record(ext, domain.FileSkipped, "")
			report.SkippedFiles = append(report.SkippedFiles, path)
		case errors.Is(err, domain.ErrStoreClosed), errors.Is(err, domain.ErrStoreIO):
			return report, err
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn("Failed to index %s: %v", path, err)
			report.Record(ext, domain.FileFailed, handler)
			report.Errors[path] = err.Error()
		default:
			report.Record(ext, domain.FileSuccessful, handler)
			report.Chunks += chunks
		}
		progress.Increment()
	}

	result, err := ix.store.Flush(ctx)
	report.Flush = result
	if err != nil {
		return report, err
	}
	return report, nil
}

// IndexFile replaces the records of one file and returns the handler
// name and the number of chunks queued. Records become searchable on the
// next flush.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (string, int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", 0, fmt.Errorf("resolve %s: %w", path, err)
	}

	handler, ok := ix.handlers.Lookup(abs)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(abs))
	}

	doc, err := handler.Process(ctx, abs)
	if err != nil {
		return handler.Name(), 0, fmt.Errorf("%s handler: %w", handler.Name(), err)
	}

	chunks := ix.chunker.Chunk(doc.Content, abs)

	if _, err := ix.store.RemoveSource(ctx, abs); err != nil {
		return handler.Name(), 0, err
	}

	base := documentMetadata(doc, handler.Name())
	for _, c := range chunks {
		meta := copyMetadata(base)
		meta[domain.MetaSource] = abs
		meta[domain.MetaHeading] = c.HeadingText
		meta[domain.MetaHeadingLevel] = strconv.Itoa(c.HeadingLevel)
		if _, err := ix.store.Add(ctx, ChunkID(abs, c.Sequence), c.Text, meta); err != nil {
			return handler.Name(), 0, err
		}
	}

	logger.Debug("Queued %d chunks from %s (%s)", len(chunks), abs, handler.Name())
	return handler.Name(), len(chunks), nil
}

// RemoveFile removes every record of the file at path.
func (ix *Indexer) RemoveFile(ctx context.Context, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", path, err)
	}
	return ix.store.RemoveSource(ctx, abs)
}

// Accepts reports whether path, relative to root, passes the filter.
func (ix *Indexer) Accepts(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return ix.filter.Match(rel)
}

// Store returns the store the indexer writes to.
func (ix *Indexer) Store() *VectorStore {
	return ix.store
}

// collect lists the files under root that pass the filter, in walk order.
func (ix *Indexer) collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && ix.Accepts(root, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// documentMetadata flattens document fields into record metadata.
func documentMetadata(doc *domain.Document, format string) map[string]string {
	meta := make(map[string]string, len(doc.Metadata)+4)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	if doc.Format != "" {
		format = doc.Format
	}
	meta[domain.MetaFormat] = format
	meta[domain.MetaTags] = jsonList(doc.Tags)
	meta[domain.MetaAttachments] = jsonList(doc.Attachments)
	if doc.Title != "" {
		meta[domain.MetaTitle] = doc.Title
	}
	return meta
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
