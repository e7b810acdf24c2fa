// Package render loads and executes the configuration templates. Templates are
// read through afero so callers decide whether they come from disk or memory.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

var (
	// ErrTemplateNotFound is returned by Load when the template file is absent.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrParse is returned by Load when the template source is malformed.
	ErrParse = errors.New("template parse error")
)

// Engine loads a compiled template by name from a search directory.
type Engine interface {
	Load(dir, name string) (Template, error)
}

// Template renders a context mapping into text.
type Template interface {
	Render(data any) (string, error)
}

// TextEngine is an Engine backed by text/template.
type TextEngine struct {
	fs     afero.Fs
	funcs  template.FuncMap
	strict bool
}

// Option configures a TextEngine.
type Option func(*TextEngine)

// WithStrict makes rendering fail on missing map keys instead of printing
// "<no value>".
func WithStrict(strict bool) Option {
	return func(e *TextEngine) {
		e.strict = strict
	}
}

// WithFuncs adds template functions on top of the built-in set.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *TextEngine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// NewTextEngine creates an engine reading templates from fs.
func NewTextEngine(fs afero.Fs, opts ...Option) *TextEngine {
	e := &TextEngine{
		fs:    fs,
		funcs: template.FuncMap{},
	}
	for k, v := range funcMap {
		e.funcs[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads and parses dir/name. Each call parses afresh; nothing is cached.
func (e *TextEngine) Load(dir, name string) (Template, error) {
	path := filepath.Join(dir, name)
	src, err := afero.ReadFile(e.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	t := template.New(name).Funcs(e.funcs)
	if e.strict {
		t = t.Option("missingkey=error")
	}
	t, err = t.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return &textTemplate{tmpl: t}, nil
}

type textTemplate struct {
	tmpl *template.Template
}

func (t *textTemplate) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}
