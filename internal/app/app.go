package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/vk/confwatch/internal/compiler"
	"github.com/vk/confwatch/internal/config"
	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/generator"
	"github.com/vk/confwatch/internal/plugin"
	"github.com/vk/confwatch/internal/render"
	"github.com/vk/confwatch/internal/status"
)

// target pairs a compiler with the console line printed after a good build.
type target struct {
	compiler *compiler.Compiler
	success  string
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	outMu  sync.Mutex
	logger *slog.Logger
	config *Config
	fs     afero.Fs

	plugins      *plugin.Registry
	compilerOpts []compiler.Option

	model   *config.Model
	targets []*target
	status  *status.Store

	httpServer *http.Server
}

// Option customises an App before its targets are built.
type Option func(*App)

// WithFs replaces the OS filesystem used for templates, fragments and outputs.
func WithFs(fs afero.Fs) Option {
	return func(a *App) { a.fs = fs }
}

// WithPlugins replaces the default plugin registry.
func WithPlugins(reg *plugin.Registry) Option {
	return func(a *App) { a.plugins = reg }
}

// WithCompilerOptions is passed to every compiler the app creates.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(a *App) { a.compilerOpts = append(a.compilerOpts, opts...) }
}

// NewApp is the constructor for the main application. Configuration that
// cannot be loaded or wired is a fatal startup error and panics; the CLI
// entrypoint recovers it into an error.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		fs:      afero.NewOsFs(),
		plugins: plugin.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	lookup, err := newEnvLookup(a.fs, cfg.EnvFile)
	if err != nil {
		panic(compiler.Wrap(compiler.ErrConfigLoad, "read env file", err))
	}

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		panic(compiler.Wrap(compiler.ErrConfigLoad, "failed to load configuration", err))
	}
	if missing := unknownTargets(model, cfg.Only); len(missing) > 0 {
		panic(compiler.Wrap(compiler.ErrConfigLoad, "select targets",
			fmt.Errorf("unknown target(s) %s; available: %s", strings.Join(missing, ", "), strings.Join(model.Names(), ", "))))
	}
	a.model = model.Filter(cfg.Only)
	logger.Debug("Configuration loaded and translated into unified model.", "targets", a.model.Names())

	if err := a.buildTargets(lookup); err != nil {
		panic(compiler.Wrap(compiler.ErrConfigLoad, "configure plugins", err))
	}
	a.status = status.New(a.model.Names()...)
	logger.Debug("Compilers created.", "count", len(a.targets), "plugins", a.plugins.Names())

	return a
}

func (a *App) buildTargets(lookup generator.EnvLookup) error {
	var copts []compiler.Option
	if a.config.SettleDelay > 0 {
		copts = append(copts, compiler.WithSettleDelay(a.config.SettleDelay))
	}
	copts = append(copts, a.compilerOpts...)

	add := func(gen compiler.Generator, pluginNames []string, success string) error {
		plugins, err := a.plugins.Lookup(pluginNames...)
		if err != nil {
			return fmt.Errorf("target %q: %w", gen.Name(), err)
		}
		c := compiler.New(gen, copts...).Apply(plugins...)
		a.targets = append(a.targets, &target{compiler: c, success: success})
		return nil
	}

	for _, t := range a.model.Templates {
		engine := render.NewTextEngine(a.fs, render.WithStrict(t.Strict))
		gen := generator.NewVersioned(t, engine, a.fs, generator.WithEnvLookup(lookup))
		if err := add(gen, t.Plugins, fmt.Sprintf("Rendered %s configuration files.", t.Name)); err != nil {
			return err
		}
	}
	for _, t := range a.model.Concats {
		gen := generator.NewConcat(t, a.fs)
		if err := add(gen, t.Plugins, fmt.Sprintf("Rendered %s file", filepath.Base(t.Destination()))); err != nil {
			return err
		}
	}
	return nil
}

func unknownTargets(model *config.Model, only []string) []string {
	known := make(map[string]bool)
	for _, name := range model.Names() {
		known[name] = true
	}
	var missing []string
	for _, name := range only {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Targets lists the names of the targets this app builds.
func (a *App) Targets() []string {
	return a.model.Names()
}

// Status returns the per-target build status store.
func (a *App) Status() *status.Store {
	return a.status
}
