// Package watch rebuilds a document whenever one of its inputs changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/util/sets"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build and returns the files it read. The returned
// inputs are watched even when err is non-nil.
type BuildFunc func(ctx context.Context) (inputs []string, err error)

// Loop watches the inputs of the last build.
type Loop struct {
	build    BuildFunc
	debounce time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	inputs  sets.Set[string]
	dirs    sets.Set[string]
	builds  int
}

// Option configures a Loop.
type Option func(*Loop)

func WithDebounce(d time.Duration) Option { return func(l *Loop) { l.debounce = d } }
func WithLogger(lg *slog.Logger) Option   { return func(l *Loop) { l.logger = lg } }

func New(build BuildFunc, opts ...Option) *Loop {
	l := &Loop{build: build, debounce: DefaultDebounce, logger: slog.Default(), inputs: sets.New[string](), dirs: sets.New[string]()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run builds once, then rebuilds on every relevant change until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = w.Close() }()
	l.watcher = w

	rebuildReq, trigger, stop := newDebouncer(l.debounce)
	defer stop()

	l.rebuild(ctx)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Watch stopped", slog.Int("builds", l.builds))
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if l.relevant(ev) {
				l.logger.Debug("Input changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("Watcher error", logfields.Error(err))
		case <-rebuildReq:
			l.rebuild(ctx)
		}
	}
}

func (l *Loop) rebuild(ctx context.Context) {
	l.builds++
	inputs, err := l.build(ctx)
	if err != nil {
		l.logger.Warn("Rebuild failed; waiting for changes", logfields.Error(err))
	}
	l.refresh(inputs)
}

// refresh replaces the watched input set. Directories are watched rather
// than files, since editors often replace a file instead of writing it.
func (l *Loop) refresh(inputs []string) {
	if len(inputs) == 0 {
		return
	}
	next := sets.New[string]()
	dirs := sets.New[string]()
	for _, p := range inputs {
		p = filepath.Clean(p)
		next.Add(p)
		dirs.Add(filepath.Dir(p))
	}
	for d := range l.dirs {
		if !dirs.Has(d) {
			_ = l.watcher.Remove(d)
		}
	}
	for d := range dirs {
		if l.dirs.Has(d) {
			continue
		}
		if err := l.watcher.Add(d); err != nil {
			l.logger.Warn("Watch add failed", logfields.Path(d), logfields.Error(err))
			dirs.Delete(d)
		}
	}
	l.inputs, l.dirs = next, dirs
	l.logger.Debug("Watching inputs", logfields.Count(len(next)), slog.Int("dirs", len(dirs)))
}

func (l *Loop) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || shouldIgnoreEvent(ev.Name) {
		return false
	}
	return l.inputs.Has(filepath.Clean(ev.Name))
}

// newDebouncer returns a request channel, a trigger that fires it once the
// triggers have been quiet for d, and a stop function.
func newDebouncer(d time.Duration) (<-chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case req <- struct{}{}:
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
	return req, trigger, stop
}

// shouldIgnoreEvent filters editor swap and backup files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}
