package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"groovy/logger"

	"github.com/fsnotify/fsnotify"
)

// RemoveHandler is told the stored name of a file that disappeared.
type RemoveHandler func(ctx context.Context, name string)

// Watcher reports files removed from the upload directory by something
// other than the service, e.g. an operator cleaning the disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	onRemove RemoveHandler
}

// NewWatcher starts watching root. Call Run to deliver events.
func NewWatcher(root string, onRemove RemoveHandler) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return &Watcher{watcher: w, root: root, onRemove: onRemove}, nil
}

// Run blocks until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, tempPrefix) {
				continue
			}
			logger.Info("Upload removed outside the service", logger.String("file", name))
			w.onRemove(ctx, name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		case <-ctx.Done():
			return
		}
	}
}
