// Package compiler turns a "build once" generator into a "build now, rebuild on
// change" one. A Compiler wraps any Generator, owns its post-process hooks and
// drives the watch loop that re-runs the generator on settled file changes.
package compiler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/watch"
)

// DefaultSettleDelay is how long a watched file must stay quiet before a
// change event is emitted.
const DefaultSettleDelay = 100 * time.Millisecond

// Generator performs one full generation pass. Implementations read the
// hooks they expose (AfterRender) and must be safe to call repeatedly.
type Generator interface {
	Name() string
	WatchPatterns() []string
	Run(ctx context.Context, hooks *Hooks) error
}

// Plugin registers hooks on a compiler.
type Plugin interface {
	Name() string
	Apply(c *Compiler)
}

// Callback receives the outcome of every run, nil on success.
type Callback func(err error)

// ThrowCallback is used when Watch or Run is given a nil callback. Any error
// is fatal.
func ThrowCallback(err error) {
	if err != nil {
		panic(err)
	}
}

// PathWatcher is the event source a Watching session consumes.
type PathWatcher interface {
	Events() <-chan watch.Event
	Errors() <-chan error
	Close() error
}

// WatcherFactory starts a PathWatcher on patterns.
type WatcherFactory func(patterns []string, settle time.Duration) (PathWatcher, error)

func defaultWatcherFactory(patterns []string, settle time.Duration) (PathWatcher, error) {
	return watch.New(patterns, watch.WithSettleDelay(settle))
}

// State is the coarse lifecycle state of a Compiler.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWatching:
		return "watching"
	default:
		return "idle"
	}
}

// Compiler is the run/watch engine around a single Generator.
type Compiler struct {
	gen        Generator
	hooks      *Hooks
	newWatcher WatcherFactory
	settle     time.Duration

	inflight atomic.Int32
	watching atomic.Int32
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWatcherFactory replaces the fsnotify based watcher.
func WithWatcherFactory(f WatcherFactory) Option {
	return func(c *Compiler) {
		c.newWatcher = f
	}
}

// WithSettleDelay sets the write-settle delay handed to the watcher.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Compiler) {
		c.settle = d
	}
}

// New creates a Compiler for gen with an empty hook set.
func New(gen Generator, opts ...Option) *Compiler {
	c := &Compiler{
		gen:        gen,
		hooks:      NewHooks(),
		newWatcher: defaultWatcherFactory,
		settle:     DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name is the generator's target name.
func (c *Compiler) Name() string { return c.gen.Name() }

// Hooks exposes the extension points plugins tap into.
func (c *Compiler) Hooks() *Hooks { return c.hooks }

// Generator returns the wrapped generator.
func (c *Compiler) Generator() Generator { return c.gen }

// Apply lets each plugin register its hooks, in order.
func (c *Compiler) Apply(plugins ...Plugin) *Compiler {
	for _, p := range plugins {
		p.Apply(c)
	}
	return c
}

// State reports whether a run is in flight, a watch session is active, or
// neither.
func (c *Compiler) State() State {
	switch {
	case c.inflight.Load() > 0:
		return StateRunning
	case c.watching.Load() > 0:
		return StateWatching
	default:
		return StateIdle
	}
}

// Build runs one full generation pass and returns its outcome. Concurrent
// Build calls are not serialized against each other.
func (c *Compiler) Build(ctx context.Context) error {
	ctx = ctxlog.WithTarget(ctx, c.Name())
	logger := ctxlog.FromContext(ctx)

	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	start := time.Now()
	logger.Debug("Run started.")
	if err := c.gen.Run(ctx, c.hooks); err != nil {
		logger.Debug("Run failed.", "error", err, "duration", time.Since(start))
		return err
	}
	logger.Debug("Run finished.", "duration", time.Since(start))
	return nil
}

// Run performs one pass and reports it through cb exactly once. A nil cb
// means ThrowCallback.
func (c *Compiler) Run(ctx context.Context, cb Callback) {
	if cb == nil {
		cb = ThrowCallback
	}
	cb(c.Build(ctx))
}

// Watch starts a watcher on the generator's patterns, runs once right away and
// then once per settled change event. Every outcome goes to cb; a nil cb
// means ThrowCallback. When the watcher fails to start, one build still runs;
// cb then receives, and Watch returns, an ErrWatch error joined with the
// build's error if it failed.
func (c *Compiler) Watch(ctx context.Context, cb Callback) (*Watching, error) {
	if cb == nil {
		cb = ThrowCallback
	}
	logger := ctxlog.FromContext(ctx).With("target", c.Name())

	patterns := c.gen.WatchPatterns()
	w, err := c.newWatcher(patterns, c.settle)
	if err != nil {
		err = Wrap(ErrWatch, "start watcher for "+c.Name(), err)
		// Build once anyway so a missing source surfaces as its own category.
		if buildErr := c.Build(ctx); buildErr != nil {
			err = errors.Join(buildErr, err)
		}
		cb(err)
		return nil, err
	}
	logger.Debug("Watcher started.", "patterns", patterns, "settle", c.settle)

	ctx, cancel := context.WithCancel(ctx)
	session := &Watching{
		compiler: c,
		watcher:  w,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.watching.Add(1)
	go session.loop(ctx, cb)
	return session, nil
}
