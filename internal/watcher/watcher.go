package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
)

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settleDelay   time.Duration
	wg            sync.WaitGroup

	mu         sync.Mutex
	dispatched map[string]struct{}
}

// Start dispatches manifests already waiting in the input directory, then
// every new one that appears, until ctx is cancelled.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported formats: .yaml, .yml")

	pending, err := w.pendingManifests()
	if err != nil {
		return fmt.Errorf("scan input dir: %w", err)
	}
	for _, path := range pending {
		w.logger.Info(ctx, "Pending manifest found: %s", path)
		if err := w.dispatch(ctx, path); err != nil {
			return w.shutdown(ctx, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return w.shutdown(ctx, ctx.Err())

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.shutdown(ctx, fmt.Errorf("watcher events channel closed"))
			}

			// Only process CREATE events
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isManifest(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-manifest file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New manifest detected: %s", event.Name)

			// Small delay to ensure file is fully written
			select {
			case <-time.After(w.settleDelay):
			case <-ctx.Done():
				return w.shutdown(ctx, ctx.Err())
			}

			if err := w.dispatch(ctx, event.Name); err != nil {
				return w.shutdown(ctx, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.shutdown(ctx, fmt.Errorf("watcher errors channel closed"))
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler in a goroutine once a slot is free. A path seen
// by both the startup scan and a create event is only handled once.
func (w *implWatcher) dispatch(ctx context.Context, filePath string) error {
	if !w.markDispatched(filePath) {
		w.logger.Debug(ctx, "Manifest already dispatched: %s", filePath)
		return nil
	}

	// Acquire semaphore slot (blocks if max concurrent reached)
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.forget(filePath)
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }() // Release semaphore

		if err := w.handler(ctx, filePath); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", filePath, err)
		}
		// Archived manifests may be dropped again under the same name.
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			w.forget(filePath)
		}
	}()
	return nil
}

func (w *implWatcher) markDispatched(filePath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dispatched == nil {
		w.dispatched = make(map[string]struct{})
	}
	if _, ok := w.dispatched[filePath]; ok {
		return false
	}
	w.dispatched[filePath] = struct{}{}
	return true
}

func (w *implWatcher) forget(filePath string) {
	w.mu.Lock()
	delete(w.dispatched, filePath)
	w.mu.Unlock()
}

func (w *implWatcher) shutdown(ctx context.Context, err error) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return err
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) pendingManifests() ([]string, error) {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if isManifest(e.Name()) {
			files = append(files, filepath.Join(w.inputDir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// isManifest checks if the file has a job manifest extension
func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(path), ".")
	}
	return false
}
