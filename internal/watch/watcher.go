// Package watch re-applies a directory of course files to the module stage
// whenever they change: fsnotify events are debounced, the directory is
// re-extracted and recombined, and the orchestrator's cascade marks the
// dependent artifacts stale.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"questgen/internal/extract"
	"questgen/internal/pipeline"
)

// DefaultDebounce batches editor save bursts into one re-extraction.
const DefaultDebounce = 500 * time.Millisecond

// Watcher binds one directory to the module stage input.
type Watcher struct {
	dir      string
	debounce time.Duration
	orch     *pipeline.Orchestrator
	ex       *extract.Extractor
	log      *zap.SugaredLogger
}

// New creates a watcher over dir. debounce <= 0 uses the default.
func New(dir string, orch *pipeline.Orchestrator, ex *extract.Extractor, debounce time.Duration, log *zap.SugaredLogger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce, orch: orch, ex: ex, log: log}
}

// Run applies the directory once, then blocks watching it until ctx is
// done. Per-file extraction failures are logged and never stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}

	if err := w.apply(ctx); err != nil {
		w.log.Warnw("initial apply failed", "dir", w.dir, "err", err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "dir", w.dir, "err", err)
		case <-fire:
			timer = nil
			fire = nil
			if err := w.apply(ctx); err != nil {
				w.log.Warnw("re-apply failed", "dir", w.dir, "err", err)
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return extract.Supported(ev.Name)
}

// apply re-extracts every supported file in the directory (sorted for a
// stable combined order) and replaces the module content. Which artifacts
// went stale is visible in the status afterwards.
func (w *Watcher) apply(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !extract.Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		w.log.Warnw("no supported files in watched dir", "dir", w.dir)
		return nil
	}

	before := w.orch.Module().Fingerprint
	mc, failures, err := w.orch.SetModuleFromFiles(ctx, w.ex, paths)
	for i := range failures {
		w.log.Warnw("file skipped", "file", failures[i].File, "err", failures[i].Err)
	}
	if err != nil {
		return err
	}
	if mc.Fingerprint == before {
		w.log.Debugw("module unchanged", "fingerprint", mc.Fingerprint.Short())
		return nil
	}
	w.log.Infow("module replaced from watched dir",
		"files", len(mc.Files), "tokens", mc.Tokens, "fingerprint", mc.Fingerprint.Short())
	return nil
}
