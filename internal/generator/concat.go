package generator

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vk/confwatch/internal/compiler"
	"github.com/vk/confwatch/internal/config"
	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// FragmentPattern selects the fragment files watched by default. Editor swap
// files and the atomic-write temp file never match it.
const FragmentPattern = "*.zsh"

// Concat joins every file of a fragment directory, in file name order and
// with no separator, into a single destination file.
type Concat struct {
	target *config.ConcatTarget
	fs     afero.Fs
	opts   options
}

// NewConcat creates the generator for target.
func NewConcat(target *config.ConcatTarget, fs afero.Fs, opts ...Option) *Concat {
	return &Concat{target: target, fs: fs, opts: newOptions(opts)}
}

func (g *Concat) Name() string { return g.target.Name }

func (g *Concat) WatchPatterns() []string {
	if len(g.target.Watch) > 0 {
		return g.target.Watch
	}
	return []string{filepath.Join(g.target.SourceDir, FragmentPattern)}
}

// Run reads all fragments concurrently and writes their concatenation. A
// missing fragment directory or any failed read leaves the destination
// untouched.
func (g *Concat) Run(ctx context.Context, hooks *compiler.Hooks) error {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ListFiles(g.fs, g.target.SourceDir)
	if err != nil {
		return compiler.Wrap(compiler.ErrConfigLoad, "list fragments", err)
	}
	logger.Debug("Fragments listed.", "dir", g.target.SourceDir, "count", len(files))

	contents := make([][]byte, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(g.fs, file)
			if err != nil {
				return compiler.Wrap(compiler.ErrIO, "read fragment "+filepath.Base(file), err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	text, err := hooks.Apply(compiler.AfterRender, string(bytes.Join(contents, nil)))
	if err != nil {
		return err
	}

	dest := g.target.Destination()
	if err := fsutil.WriteFileAtomic(g.fs, dest, []byte(text), g.opts.perm); err != nil {
		return compiler.Wrap(compiler.ErrIO, "write "+filepath.Base(dest), err)
	}
	logger.Info("Concatenated fragments.", "fragments", len(files), "path", dest)
	return nil
}
