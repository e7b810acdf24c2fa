package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/vk/confwatch/internal/config"
	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	fs  afero.Fs
	env map[string]string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnv replaces the variables exposed to expressions as env. The process
// environment is used by default.
func WithEnv(env map[string]string) Option {
	return func(l *Loader) { l.env = env }
}

// NewLoader creates an HCL configuration loader reading from fs.
func NewLoader(fs afero.Fs, opts ...Option) *Loader {
	l := &Loader{fs: fs}
	for _, opt := range opts {
		opt(l)
	}
	if l.env == nil {
		l.env = environ()
	}
	return l
}

// Load parses every path, a file or a directory searched for .hcl files, and
// merges the blocks into one model. Target names must be unique across all
// files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", strings.Join(paths, ", "))
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	seen := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		dir, err := filepath.Abs(filepath.Dir(file))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory of %s: %w", file, err)
		}
		evalCtx := newEvalContext(dir, l.env)

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Templates {
			if err := claim(seen, block.Name, file); err != nil {
				return nil, err
			}
			target, err := translateTemplate(ctx, block, dir, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Templates = append(model.Templates, target)
		}
		for _, block := range root.Concats {
			if err := claim(seen, block.Name, file); err != nil {
				return nil, err
			}
			target, err := translateConcat(block, dir, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Concats = append(model.Concats, target)
		}
	}

	logger.Debug("HCL loading complete.", "templates", len(model.Templates), "concats", len(model.Concats))
	return model, nil
}

func claim(seen map[string]string, name, file string) error {
	if prev, ok := seen[name]; ok {
		return fmt.Errorf("duplicate target %q in %s (first defined in %s)", name, file, prev)
	}
	seen[name] = file
	return nil
}

// findAllHCLFiles expands directories into the .hcl files they contain,
// dropping duplicates while keeping the order paths were given in.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := l.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing config path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(l.fs, path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return all, nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
