package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/confwatch/internal/version"
)

func TestTargetPaths(t *testing.T) {
	tmpl := &TemplateTarget{TemplateDir: "/nmk/tmux", TemplateName: "tmux.conf.tmpl", OutputDir: "/nmk/tmux"}
	assert.Equal(t, filepath.Join("/nmk/tmux", "tmux.conf.tmpl"), tmpl.TemplatePath())
	assert.Equal(t, filepath.Join("/nmk/tmux", "2.0.conf"), tmpl.OutputPath(version.Version(2)))

	zsh := &ConcatTarget{Zdotdir: "/nmk/zsh"}
	assert.Equal(t, filepath.Join("/nmk/zsh", ".zshrc"), zsh.Destination())
	zsh.OutputName = ".zprofile"
	assert.Equal(t, filepath.Join("/nmk/zsh", ".zprofile"), zsh.Destination())
}

func TestModelFilter(t *testing.T) {
	m := &Model{
		Templates: []*TemplateTarget{{Name: "tmux"}},
		Concats:   []*ConcatTarget{{Name: "zsh"}, {Name: "bash"}},
	}

	assert.Equal(t, []string{"tmux", "zsh", "bash"}, m.Names())
	assert.Same(t, m, m.Filter(nil))
	assert.Equal(t, []string{"zsh"}, m.Filter([]string{"zsh"}).Names())
	assert.Empty(t, m.Filter([]string{"nope"}).Names())
}
