package render

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestTextEngine_RenderVersionContext(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/tmpl/tmux.conf.tmpl": `{{ if .version | versionAtLeast 2.1 }}set -g mouse on{{ else }}set -g mode-mouse on{{ end }}
set -g update-environment "{{ .tmp_envs | join " " }}"
`,
	})
	engine := NewTextEngine(fs)

	tmpl, err := engine.Load("/tmpl", "tmux.conf.tmpl")
	require.NoError(t, err)

	out, err := tmpl.Render(map[string]any{"version": 2.3, "tmp_envs": []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, "set -g mouse on\nset -g update-environment \"A B\"\n", out)

	out, err = tmpl.Render(map[string]any{"version": 1.9, "tmp_envs": []string{}})
	require.NoError(t, err)
	assert.Equal(t, "set -g mode-mouse on\nset -g update-environment \"\"\n", out)
}

func TestTextEngine_RenderIsDeterministic(t *testing.T) {
	fs := newFs(t, map[string]string{"/t/x.tmpl": "{{ range $k, $v := .env }}{{ $k }}={{ $v }};{{ end }}"})
	tmpl, err := NewTextEngine(fs).Load("/t", "x.tmpl")
	require.NoError(t, err)

	ctx := map[string]any{"env": map[string]string{"B": "2", "A": "1", "C": "3"}}
	first, err := tmpl.Render(ctx)
	require.NoError(t, err)
	second, err := tmpl.Render(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "A=1;B=2;C=3;", first)
}

func TestTextEngine_LoadMissing(t *testing.T) {
	_, err := NewTextEngine(afero.NewMemMapFs()).Load("/tmpl", "missing.tmpl")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTextEngine_LoadMalformed(t *testing.T) {
	fs := newFs(t, map[string]string{"/t/bad.tmpl": "{{ if .version }}"})
	_, err := NewTextEngine(fs).Load("/t", "bad.tmpl")
	require.ErrorIs(t, err, ErrParse)
}

func TestTextEngine_StrictMissingKey(t *testing.T) {
	fs := newFs(t, map[string]string{"/t/x.tmpl": "{{ .env.MISSING }}"})
	ctx := map[string]any{"env": map[string]string{}}

	lax, err := NewTextEngine(fs).Load("/t", "x.tmpl")
	require.NoError(t, err)
	_, err = lax.Render(ctx)
	require.NoError(t, err)

	strict, err := NewTextEngine(fs, WithStrict(true)).Load("/t", "x.tmpl")
	require.NoError(t, err)
	_, err = strict.Render(ctx)
	require.Error(t, err)
}

func TestTextEngine_Funcs(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/t/x.tmpl": `{{ default "zsh" .shell }} {{ upper "a" }}{{ lower "B" }} {{ quote "q" }} {{ shout "hi" }}`,
	})
	engine := NewTextEngine(fs, WithFuncs(map[string]any{"shout": func(s string) string { return s + "!" }}))
	tmpl, err := engine.Load("/t", "x.tmpl")
	require.NoError(t, err)

	out, err := tmpl.Render(map[string]any{"shell": ""})
	require.NoError(t, err)
	assert.Equal(t, `zsh Ab "q" hi!`, out)
}
