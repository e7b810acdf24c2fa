// Package watch turns raw fsnotify events into settled change notifications
// for a set of glob patterns.
//
// Each pattern is split into a base directory, which is watched, and a glob
// that event paths are matched against. Patterns containing "**" watch the
// base directory recursively. A matching Write or Create event starts a
// per-path settle timer; further events on the same path restart it, and only
// when the path has been quiet for the whole settle delay is a single Event
// emitted. This collapses an editor's burst of writes into one rebuild and
// keeps half-written templates from being picked up.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is used when no WithSettleDelay option is given.
const DefaultSettleDelay = 100 * time.Millisecond

// Event is a settled change to a file matching one of the patterns.
type Event struct {
	Op   fsnotify.Op
	Path string
}

// Watcher emits settled change events for files matching its patterns.
type Watcher struct {
	fsw      *fsnotify.Watcher
	patterns []pattern
	settle   time.Duration

	events chan Event
	errors chan error
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	pending map[string]*pendingEvent

	loopWG  sync.WaitGroup
	timerWG sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

type pattern struct {
	glob      string // absolute, slash separated
	base      string // OS separated directory that is watched
	recursive bool
}

type pendingEvent struct {
	timer *time.Timer
	op    fsnotify.Op
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay sets how long a path must stay quiet before its event is
// emitted. Zero or negative values fall back to DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New starts watching patterns. It fails when a pattern is malformed or its
// base directory cannot be watched.
func New(patterns []string, opts ...Option) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, errors.New("no watch patterns given")
	}

	w := &Watcher{
		settle:  DefaultSettleDelay,
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
		pending: make(map[string]*pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, raw := range patterns {
		p, err := parsePattern(raw)
		if err != nil {
			return nil, err
		}
		w.patterns = append(w.patterns, p)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w.fsw = fsw

	for _, p := range w.patterns {
		if err := w.addBase(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.loopWG.Add(1)
	go w.loop()
	return w, nil
}

func parsePattern(raw string) (pattern, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return pattern{}, fmt.Errorf("failed to resolve watch pattern %q: %w", raw, err)
	}
	glob := filepath.ToSlash(abs)
	if !doublestar.ValidatePattern(glob) {
		return pattern{}, fmt.Errorf("invalid watch pattern %q", raw)
	}
	base, rest := doublestar.SplitPattern(glob)
	return pattern{
		glob:      glob,
		base:      filepath.FromSlash(base),
		recursive: strings.Contains(rest, "**"),
	}, nil
}

func (w *Watcher) addBase(p pattern) error {
	if !p.recursive {
		if err := w.fsw.Add(p.base); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p.base, err)
		}
		return nil
	}
	err := filepath.WalkDir(p.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s recursively: %w", p.base, err)
	}
	return nil
}

// Events delivers settled change events. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors delivers watcher failures. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops watching, drops pending events and closes both channels.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		for path, p := range w.pending {
			if p.timer.Stop() {
				w.timerWG.Done()
			}
			delete(w.pending, path)
		}
		w.mu.Unlock()

		close(w.done)
		w.closeErr = w.fsw.Close()
		w.loopWG.Wait()
		w.timerWG.Wait()
		close(w.events)
		close(w.errors)
	})
	return w.closeErr
}

func (w *Watcher) loop() {
	defer w.loopWG.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		w.watchNewDir(ev.Name)
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !w.matches(ev.Name) {
		return
	}
	w.schedule(ev.Name, ev.Op)
}

// watchNewDir extends recursive patterns to directories created after start.
func (w *Watcher) watchNewDir(path string) {
	for _, p := range w.patterns {
		if !p.recursive || !within(path, p.base) {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			_ = w.fsw.Add(path)
		}
		return
	}
}

// within reports whether path is base itself or lies below it.
func within(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(base, string(filepath.Separator))+string(filepath.Separator))
}

func (w *Watcher) matches(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p.glob, slashed); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(path string, op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.op |= op
		p.timer.Reset(w.settle)
		return
	}

	p := &pendingEvent{op: op}
	w.timerWG.Add(1)
	p.timer = time.AfterFunc(w.settle, func() { w.fire(path, p) })
	w.pending[path] = p
}

func (w *Watcher) fire(path string, p *pendingEvent) {
	defer w.timerWG.Done()

	w.mu.Lock()
	if w.pending[path] == p {
		delete(w.pending, path)
	}
	closed := w.closed
	op := p.op
	w.mu.Unlock()
	if closed {
		return
	}

	select {
	case w.events <- Event{Op: op, Path: path}:
	case <-w.done:
	}
}
