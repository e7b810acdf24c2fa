package plugin

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/confwatch/internal/compiler"
)

// Registry maps plugin names to implementations.
type Registry struct {
	all map[string]compiler.Plugin
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{all: make(map[string]compiler.Plugin)}
}

// Default returns a registry holding the built-in plugins.
func Default() *Registry {
	r := New()
	r.Register(BlankLines{})
	return r
}

// Register adds p under its name. Registering a name twice is a programmer
// error and panics.
func (r *Registry) Register(p compiler.Plugin) {
	name := p.Name()
	if _, exists := r.all[name]; exists {
		panic(fmt.Sprintf("plugin with name '%s' already registered", name))
	}
	slog.Debug("Registering plugin.", "name", name)
	r.all[name] = p
}

// Names lists the registered plugin names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for name := range r.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves names in order. Every unknown name is reported at once.
func (r *Registry) Lookup(names ...string) ([]compiler.Plugin, error) {
	plugins := make([]compiler.Plugin, 0, len(names))
	var unknown []string
	for _, name := range names {
		p, ok := r.all[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		plugins = append(plugins, p)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown plugin(s) %s; available: %s",
			strings.Join(unknown, ", "), strings.Join(r.Names(), ", "))
	}
	return plugins, nil
}
