package compiler

import (
	"fmt"
	"sync"
)

// AfterRender is the extension point invoked on generated text right before
// it is written.
const AfterRender = "after-render"

// TransformFunc rewrites generated text. It must be a pure function of its input.
type TransformFunc func(text string) (string, error)

type tap struct {
	name string
	fn   TransformFunc
}

// Hooks is an ordered set of taps per named extension point, owned by a single
// Compiler.
type Hooks struct {
	mu     sync.RWMutex
	points map[string][]tap
}

// NewHooks creates an empty hook set.
func NewHooks() *Hooks {
	return &Hooks{points: make(map[string][]tap)}
}

// Tap registers fn on point. Taps run in registration order.
func (h *Hooks) Tap(point, name string, fn TransformFunc) {
	if fn == nil {
		panic(fmt.Sprintf("hook %q on %q has a nil transform", name, point))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points[point] = append(h.points[point], tap{name: name, fn: fn})
}

// Taps lists the tap names registered on point, in order.
func (h *Hooks) Taps(point string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.points[point]))
	for _, t := range h.points[point] {
		names = append(names, t.name)
	}
	return names
}

// Apply threads text through every tap on point. With no taps the text is
// returned unchanged. A failing tap aborts with ErrRender.
func (h *Hooks) Apply(point, text string) (string, error) {
	if h == nil {
		return text, nil
	}
	h.mu.RLock()
	taps := h.points[point]
	h.mu.RUnlock()

	for _, t := range taps {
		out, err := t.fn(text)
		if err != nil {
			return "", Wrap(ErrRender, fmt.Sprintf("hook %q on %q", t.name, point), err)
		}
		text = out
	}
	return text, nil
}
