package compiler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/confwatch/internal/ctxlog"
)

// Watching is the handle of an active watch session: the watcher plus the
// compiler it rebuilds. Runs triggered by one session never overlap because
// they are issued from a single loop goroutine.
type Watching struct {
	compiler *Compiler
	watcher  PathWatcher
	cancel   context.CancelFunc
	done     chan struct{}
	runs     atomic.Int64

	stopOnce sync.Once
	stopErr  error
}

// Compiler returns the compiler this session drives.
func (w *Watching) Compiler() *Compiler { return w.compiler }

// Runs is the number of runs this session has completed so far.
func (w *Watching) Runs() int64 { return w.runs.Load() }

// Done is closed once the session loop has exited.
func (w *Watching) Done() <-chan struct{} { return w.done }

// Close stops the watcher and waits for the loop to exit. An in-flight run
// is allowed to finish. Cancelling the context passed to Watch has the same
// effect, except that nothing waits.
func (w *Watching) Close() error {
	w.cancel()
	err := w.stopWatcher()
	<-w.done
	return err
}

func (w *Watching) stopWatcher() error {
	w.stopOnce.Do(func() {
		w.stopErr = w.watcher.Close()
	})
	return w.stopErr
}

func (w *Watching) loop(ctx context.Context, cb Callback) {
	defer close(w.done)
	defer w.compiler.watching.Add(-1)
	logger := ctxlog.FromContext(ctx).With("target", w.compiler.Name())

	w.trigger(ctx, cb)

	events := w.watcher.Events()
	errs := w.watcher.Errors()
	for {
		select {
		case <-ctx.Done():
			if err := w.stopWatcher(); err != nil {
				logger.Warn("Failed to close watcher.", "error", err)
			}
			logger.Debug("Watch loop stopped.", "runs", w.Runs())
			return
		case ev, ok := <-events:
			if !ok {
				logger.Debug("Watcher event stream closed.", "runs", w.Runs())
				return
			}
			logger.Info("Change detected.", "path", ev.Path, "op", ev.Op.String())
			w.trigger(ctx, cb)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("Watcher reported an error.", "error", err)
			cb(Wrap(ErrWatch, "watcher for "+w.compiler.Name(), err))
		}
	}
}

func (w *Watching) trigger(ctx context.Context, cb Callback) {
	err := w.compiler.Build(ctx)
	w.runs.Add(1)
	cb(err)
}
