package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/vk/confwatch/internal/compiler"
	"github.com/vk/confwatch/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	if a.config.Command == CommandWatch {
		return a.Watch(ctx)
	}
	return a.Render(ctx)
}

// Render builds every target once, concurrently. All targets are attempted;
// the first failure is returned.
func (a *App) Render(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Render method started.", "targets", len(a.targets))

	if len(a.targets) == 0 {
		a.logger.Warn("No targets configured, nothing to render.")
		return nil
	}

	var eg errgroup.Group
	for _, t := range a.targets {
		eg.Go(func() error {
			var runErr error
			t.compiler.Run(ctx, func(err error) {
				a.report(t, err)
				runErr = err
			})
			return runErr
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	a.logger.Debug("App.Render method finished.")
	return nil
}

// Watch builds every target and rebuilds it whenever its sources settle
// after a change, until ctx is cancelled. Without KeepGoing the first
// failure ends the session and is returned.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Watch method started.", "targets", len(a.targets))

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthCheckServer(ctx)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sessions := make([]*compiler.Watching, 0, len(a.targets))
	defer func() {
		for _, s := range sessions {
			if err := s.Close(); err != nil {
				a.logger.Warn("Failed to close watcher.", "target", s.Compiler().Name(), "error", err)
			}
		}
	}()

	for _, t := range a.targets {
		cb := func(err error) {
			a.report(t, err)
			if err != nil && !a.config.KeepGoing {
				cancel(err)
			}
		}
		s, err := t.compiler.Watch(ctx, cb)
		if err != nil {
			return err
		}
		sessions = append(sessions, s)
	}
	a.logger.Info("👀 Watching for changes.", "targets", a.model.Names(), "keep_going", a.config.KeepGoing)

	<-ctx.Done()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		return cause
	}
	a.logger.Info("Watch stopped.")
	return nil
}

// report records a build outcome and prints the console status line.
func (a *App) report(t *target, err error) {
	name := t.compiler.Name()
	a.status.Record(name, err)

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if err != nil {
		a.logger.Error("Build failed.", "target", name, "error", err)
		fmt.Fprintln(a.outW, color.Red.Sprintf("✗ %s: %v", name, err))
		return
	}
	fmt.Fprintln(a.outW, color.Green.Sprint(t.success))
}
