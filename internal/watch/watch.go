// Package watch re-runs a callback when source files under a directory
// tree change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

// DefaultDebounce is how long the tree must be quiet before a run.
const DefaultDebounce = 300 * time.Millisecond

// Options selects which changes trigger a run.
type Options struct {
	Extensions  []string
	ExcludeDirs []string
	Debounce    time.Duration
}

// Watcher watches a directory tree. fsnotify is not recursive, so every
// directory is registered, including ones created while running.
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher
}

// New registers root and its subdirectories.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{root: root, opts: opts, watcher: fw}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && slices.Contains(w.opts.ExcludeDirs, d.Name()) {
			return filepath.SkipDir
		}
		logging.Debug("watching directory", "path", path)
		return w.watcher.Add(path)
	})
}

func (w *Watcher) relevant(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Run blocks until ctx is done, calling fn with the sorted set of changed
// files once the tree has been quiet for the debounce interval. An error
// from fn stops the watcher and is returned.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string) error) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeAddDir(event.Name)
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			logging.Debug("change detected", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := fn(ctx, changed); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if slices.Contains(w.opts.ExcludeDirs, filepath.Base(path)) {
		return
	}
	if err := w.addTree(path); err != nil {
		logging.Debug("not watching new path", "path", path, "error", err)
	}
}
