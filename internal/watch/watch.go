// Package watch reruns a build whenever files below a project root change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/ssio/internal/logfields"
)

// DefaultDebounce is how long the tree must be quiet before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Its error is logged and watching continues.
type BuildFunc func(ctx context.Context) error

// Watcher watches a directory tree recursively.
type Watcher struct {
	root        string
	ignore      []string
	ignoreFiles []string
	debounce    time.Duration
	logger      *slog.Logger
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period; non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore excludes directories, typically the output directory, from watching.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.ignore = append(w.ignore, abs)
			}
		}
	}
}

// WithIgnoreFiles excludes files the build itself writes, such as a report. Temp
// siblings named after the file (report.json.tmp, metrics.prom123) are excluded too.
func WithIgnoreFiles(files ...string) Option {
	return func(w *Watcher) {
		for _, f := range files {
			if f == "" {
				continue
			}
			if abs, err := filepath.Abs(f); err == nil {
				w.ignoreFiles = append(w.ignoreFiles, abs)
			}
		}
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Watcher for root.
func New(root string, opts ...Option) *Watcher {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	w := &Watcher{root: abs, debounce: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once, then again after every burst of changes, until ctx is done.
// Builds never overlap; changes made during a build cause exactly one more.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return err
	}

	rebuildReq, trigger, stop := newDebouncer(w.debounce)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.runBuilds(ctx, build, rebuildReq)
	}()
	defer wg.Wait()

	rebuildReq <- struct{}{}
	w.logger.Info("Watching for changes", logfields.Path(w.root))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopped watching", logfields.Path(w.root))
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) runBuilds(ctx context.Context, build BuildFunc, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			if err := build(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// newDebouncer returns a channel that receives one value after trigger stops being
// called for d. The channel holds at most one pending request.
func newDebouncer(d time.Duration) (chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return rebuildReq, trigger, stop
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.ignored(ev.Name) || shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (w.ignored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports whether path is one of the ignored directories or below one, or
// one of the ignored files.
func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	for _, f := range w.ignoreFiles {
		if filepath.Dir(path) == filepath.Dir(f) && strings.HasPrefix(filepath.Base(path), filepath.Base(f)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent is true for hidden, editor swap and OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
