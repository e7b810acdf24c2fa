package generator

import (
	"context"
	"errors"

	"github.com/spf13/afero"
	"github.com/vk/confwatch/internal/compiler"
	"github.com/vk/confwatch/internal/config"
	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/fsutil"
	"github.com/vk/confwatch/internal/render"
	"github.com/vk/confwatch/internal/version"
	"golang.org/x/sync/errgroup"
)

// Render context keys.
const (
	KeyVersion       = "version"
	KeyVersionString = "version_string"
	KeyTmpEnvs       = "tmp_envs"
	KeyEnv           = "env"
)

// Versioned renders a shared template once per configured version and writes
// each result to <output_dir>/<version>.conf.
type Versioned struct {
	target *config.TemplateTarget
	engine render.Engine
	fs     afero.Fs
	opts   options
}

// NewVersioned creates the generator for target.
func NewVersioned(target *config.TemplateTarget, engine render.Engine, fs afero.Fs, opts ...Option) *Versioned {
	return &Versioned{
		target: target,
		engine: engine,
		fs:     fs,
		opts:   newOptions(opts),
	}
}

func (g *Versioned) Name() string { return g.target.Name }

func (g *Versioned) WatchPatterns() []string {
	if len(g.target.Watch) > 0 {
		return g.target.Watch
	}
	return []string{g.target.TemplatePath()}
}

// Run reloads the template, then renders and writes every version
// concurrently. The first failure is returned; sibling versions still in
// flight are cancelled before they write.
func (g *Versioned) Run(ctx context.Context, hooks *compiler.Hooks) error {
	logger := ctxlog.FromContext(ctx)

	tmpl, err := g.engine.Load(g.target.TemplateDir, g.target.TemplateName)
	if err != nil {
		if errors.Is(err, render.ErrParse) {
			return compiler.Wrap(compiler.ErrRender, "parse template", err)
		}
		return compiler.Wrap(compiler.ErrConfigLoad, "load template", err)
	}
	logger.Debug("Template loaded.", "path", g.target.TemplatePath())

	env := g.forwardedEnv()
	eg, egCtx := errgroup.WithContext(ctx)
	for _, v := range g.target.Versions {
		eg.Go(func() error {
			return g.generate(egCtx, tmpl, hooks, v, env)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	logger.Info("Rendered versioned configs.", "versions", len(g.target.Versions), "dir", g.target.OutputDir)
	return nil
}

func (g *Versioned) generate(ctx context.Context, tmpl render.Template, hooks *compiler.Hooks, v version.Version, env map[string]string) error {
	name := v.FileName()
	text, err := tmpl.Render(g.renderContext(v, env))
	if err != nil {
		return compiler.Wrap(compiler.ErrRender, "render "+name, err)
	}
	text, err = hooks.Apply(compiler.AfterRender, text)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := g.target.OutputPath(v)
	if err := fsutil.WriteFileAtomic(g.fs, path, []byte(text), g.opts.perm); err != nil {
		return compiler.Wrap(compiler.ErrIO, "write "+name, err)
	}
	ctxlog.FromContext(ctx).Debug("Config written.", "version", v.String(), "path", path)
	return nil
}

// renderContext builds a fresh mapping per version so concurrent renders
// never share mutable state.
func (g *Versioned) renderContext(v version.Version, env map[string]string) map[string]any {
	tmpEnvs := make([]string, len(g.target.ContextEnv))
	copy(tmpEnvs, g.target.ContextEnv)
	envCopy := make(map[string]string, len(env))
	for k, val := range env {
		envCopy[k] = val
	}
	return map[string]any{
		KeyVersion:       float64(v),
		KeyVersionString: v.String(),
		KeyTmpEnvs:       tmpEnvs,
		KeyEnv:           envCopy,
	}
}

// forwardedEnv resolves the configured variable names. Unset variables are
// left out of the map.
func (g *Versioned) forwardedEnv() map[string]string {
	env := make(map[string]string, len(g.target.ContextEnv))
	for _, name := range g.target.ContextEnv {
		if val, ok := g.opts.lookupEnv(name); ok {
			env[name] = val
		}
	}
	return env
}
