// Package watch re-processes directories of a music library as files appear
// in them.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Handler is called once per changed directory after the tree has been
// quiet for the debounce period.
type Handler func(ctx context.Context, dir string)

// Watcher watches a directory tree, sub-directories included.
type Watcher struct {
	root     string
	debounce time.Duration
	handler  Handler
	logger   *logrus.Entry

	watcher *fsnotify.Watcher
}

// New registers root and every directory below it.
func New(root string, debounce time.Duration, handler Handler, logger *logrus.Entry) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		handler:  handler,
		logger:   logger.WithField("root", root),
		watcher:  watcher,
	}

	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: %w (%w)", ErrWatch, ErrCantWatch, err)
	}

	return w, nil
}

// Run dispatches changes until ctx is done or the watcher is closed.
//
// Changed directories are collected until no event arrived for the
// debounce period and are then handed to the handler one at a time, in
// lexical order.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			dir, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			pending[dir] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")

		case <-timer.C:
			dirs := make([]string, 0, len(pending))
			for dir := range pending {
				dirs = append(dirs, dir)
			}
			clear(pending)
			sort.Strings(dirs)

			for _, dir := range dirs {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.WithField("dir", dir).Debug("processing changed directory")
				w.handler(ctx, dir)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handleEvent returns the directory an event concerns. Removals, renames and
// permission changes are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	w.logger.WithField("op", event.Op.String()).WithField("path", event.Name).Debug("watcher event")

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				w.logger.WithField("dir", event.Name).WithError(err).Warn("cannot watch new directory")
			}
		}
		return event.Name, true
	}

	return filepath.Dir(event.Name), true
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.WithField("dir", path).WithError(err).Warn("skipping unreadable directory")
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}
