package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before applying them.
const DefaultDebounce = 300 * time.Millisecond

// ChangeType is the action a file change triggers.
type ChangeType string

// Change types.
const (
	ChangeIndexed ChangeType = "indexed"
	ChangeRemoved ChangeType = "removed"
)

// Change is one applied file change.
type Change struct {
	Path   string
	Type   ChangeType
	Chunks int
	Err    error
}

// Watcher keeps the store in step with a directory tree: changed files
// are re-indexed and deleted files removed.
type Watcher struct {
	indexer  *Indexer
	root     string
	debounce time.Duration

	// OnChange, when set, is called after each change is applied.
	OnChange func(Change)
}

// NewWatcher creates a watcher over root.
func NewWatcher(indexer *Indexer, root string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{indexer: indexer, root: abs, debounce: debounce}, nil
}

// Run watches until ctx is cancelled. Each settled burst of changes is
// applied and flushed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	logger.Info("Watching %s", w.root)

	pending := make(map[string]ChangeType)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(pending) > 0 {
				w.apply(context.WithoutCancel(ctx), pending)
			}
			return nil

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Has(fsnotify.Create) && !isHidden(w.rel(event.Name)) {
					if err := w.addTree(fw, event.Name); err != nil {
						logger.Warn("Watching %s: %v", event.Name, err)
					}
				}
				continue
			}
			change, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			pending[event.Name] = change
			timer.Reset(w.debounce)

		case <-timer.C:
			w.apply(ctx, pending)
			pending = make(map[string]ChangeType)
		}
	}
}

// handleEvent maps a filesystem event to a change. Directories, hidden
// paths, filtered files and chmod-only events produce none.
func (w *Watcher) handleEvent(event fsnotify.Event) (ChangeType, bool) {
	if !w.indexer.Accepts(w.root, event.Name) {
		return "", false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ChangeRemoved, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return "", false
		}
		return ChangeIndexed, true
	default:
		return "", false
	}
}

func (w *Watcher) apply(ctx context.Context, pending map[string]ChangeType) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		change := Change{Path: path, Type: pending[path]}
		switch change.Type {
		case ChangeIndexed:
			_, change.Chunks, change.Err = w.indexer.IndexFile(ctx, path)
			if errors.Is(change.Err, domain.ErrUnsupportedType) {
				continue
			}
		case ChangeRemoved:
			change.Chunks, change.Err = w.indexer.RemoveFile(ctx, path)
		}
		if change.Err != nil {
			logger.Warn("%s %s: %v", change.Type, path, change.Err)
		} else {
			logger.Info("%s %s (%d chunks)", change.Type, path, change.Chunks)
		}
		if w.OnChange != nil {
			w.OnChange(change)
		}
	}

	if _, err := w.indexer.Store().Flush(ctx); err != nil {
		logger.Error("Flush after changes: %v", err)
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}
