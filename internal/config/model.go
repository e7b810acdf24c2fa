package config

import (
	"path/filepath"

	"github.com/vk/confwatch/internal/version"
)

// DefaultZshrcName is the artifact a concat target writes when no
// output_name is configured.
const DefaultZshrcName = ".zshrc"

// Model is the unified representation of every build target.
type Model struct {
	Templates []*TemplateTarget
	Concats   []*ConcatTarget
}

// TemplateTarget renders one template per version into OutputDir.
type TemplateTarget struct {
	Name         string
	TemplateDir  string
	TemplateName string
	OutputDir    string
	Versions     []version.Version
	// ContextEnv names the environment variables forwarded into the render
	// context, in declaration order.
	ContextEnv []string
	Watch      []string
	Plugins    []string
	Strict     bool
}

// TemplatePath is the full path of the template file.
func (t *TemplateTarget) TemplatePath() string {
	return filepath.Join(t.TemplateDir, t.TemplateName)
}

// OutputPath is where the artifact for v is written.
func (t *TemplateTarget) OutputPath(v version.Version) string {
	return filepath.Join(t.OutputDir, v.FileName())
}

// ConcatTarget joins every file in SourceDir into Zdotdir/OutputName.
type ConcatTarget struct {
	Name       string
	SourceDir  string
	Zdotdir    string
	OutputName string
	Watch      []string
	Plugins    []string
}

// Destination is the full path of the concatenated artifact.
func (c *ConcatTarget) Destination() string {
	name := c.OutputName
	if name == "" {
		name = DefaultZshrcName
	}
	return filepath.Join(c.Zdotdir, name)
}

// Names lists every target name, templates first, in declaration order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Templates)+len(m.Concats))
	for _, t := range m.Templates {
		names = append(names, t.Name)
	}
	for _, c := range m.Concats {
		names = append(names, c.Name)
	}
	return names
}

// Filter keeps only the targets whose name is in only. An empty only keeps
// everything.
func (m *Model) Filter(only []string) *Model {
	if len(only) == 0 {
		return m
	}
	keep := make(map[string]bool, len(only))
	for _, name := range only {
		keep[name] = true
	}
	out := &Model{}
	for _, t := range m.Templates {
		if keep[t.Name] {
			out.Templates = append(out.Templates, t)
		}
	}
	for _, c := range m.Concats {
		if keep[c.Name] {
			out.Concats = append(out.Concats, c)
		}
	}
	return out
}
