// Package watcher re-runs the pipeline when source files change.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"locsync/internal/filewalker"
)

// Watcher debounces filesystem events under the input roots and
// triggers full pipeline re-runs. Runs are serialized: events arriving
// during a run coalesce into exactly one follow-up run.
type Watcher struct {
	roots    []string
	debounce time.Duration
}

// New derives watch roots from the input glob patterns. debounce <= 0
// selects a sensible default.
func New(inputs []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	seen := map[string]bool{}
	var roots []string

	for _, pattern := range inputs {
		base, _ := doublestar.SplitPattern(pattern)
		if base == "" {
			base = "."
		}

		if !seen[base] {
			seen[base] = true
			roots = append(roots, base)
		}
	}

	return &Watcher{roots: roots, debounce: debounce}
}

// Watch blocks until ctx is cancelled, invoking run after each
// debounced burst of changes. The initial run is the caller's job.
func (w *Watcher) Watch(ctx context.Context, run func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := addRecursive(fw, root); err != nil {
			return err
		}
	}

	var timerC <-chan time.Time

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if !w.relevant(ev) {
				continue
			}

			if ev.Op.Has(fsnotify.Create) {
				// New directories need their own watches.
				_ = addRecursive(fw, ev.Name)
			}

			timer.Reset(w.debounce)
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			log.Warn().Err(err).Msg("Watch error")

		case <-timerC:
			timerC = nil

			log.Info().Msg("Change detected, re-running")

			if err := run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("Run failed")
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(ev.Name))
	if ext == "" {
		// Likely a directory event.
		return true
	}

	return filewalker.SupportedExtensions[ext]
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		if err := fw.Add(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Cannot watch directory")
		}

		return nil
	})
}
