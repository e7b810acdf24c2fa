package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/confwatch/internal/app"
	"github.com/vk/confwatch/internal/hcl"
	"github.com/vk/confwatch/internal/testutil"
)

const watchProjectHCL = `
template "tmux" {
  template_dir = "tmux"
  template     = "tmux.conf.tmpl"
  versions     = [2.1]
}

concat "zsh" {
  source_dir = "zsh/zshrc.src"
  zdotdir    = "zsh"
}
`

func fileContent(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// TestWatch_RebuildsOnSourceChanges drives a full watch session against the
// real filesystem. Edits to the template and to the fragment directory each
// rebuild their target, and artifacts written next to the template do not
// retrigger it.
func TestWatch_RebuildsOnSourceChanges(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteTree(t, map[string]string{
		"confwatch.hcl":          watchProjectHCL,
		"tmux/tmux.conf.tmpl":    "set -g status-left v1\n",
		"zsh/zshrc.src/10-a.zsh": "alias a=1\n",
		"zsh/zshrc.src/20-b.zsh": "alias b=1\n",
	})
	cfg, err := app.NewConfig(app.Config{
		ConfigPath:  filepath.Join(dir, "confwatch.hcl"),
		Command:     app.CommandWatch,
		LogFormat:   "text",
		SettleDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	fs := afero.NewOsFs()
	testApp, logs := app.SetupAppTest(t, cfg, hcl.NewLoader(fs), app.WithFs(fs))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx) }()

	conf := filepath.Join(dir, "tmux", "2.1.conf")
	zshrc := filepath.Join(dir, "zsh", ".zshrc")

	// --- Act & Assert ---
	require.Eventually(t, func() bool {
		return fileContent(conf) == "set -g status-left v1\n" && fileContent(zshrc) == "alias a=1\nalias b=1\n"
	}, 5*time.Second, 20*time.Millisecond, "initial build")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmux", "tmux.conf.tmpl"), []byte("set -g status-left v2\n\n"), 0o644))
	require.Eventually(t, func() bool {
		return fileContent(conf) == "set -g status-left v2\n"
	}, 5*time.Second, 20*time.Millisecond, "template edit is rebuilt")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "zsh", "zshrc.src", "15-new.zsh"), []byte("alias n=1\n"), 0o644))
	require.Eventually(t, func() bool {
		return fileContent(zshrc) == "alias a=1\nalias n=1\nalias b=1\n"
	}, 5*time.Second, 20*time.Millisecond, "new fragment is picked up")

	// Editor swap files are not fragments and must not trigger a build.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zsh", "zshrc.src", ".10-a.zsh.swp"), []byte("junk"), 0o644))

	// Leave room for a self-triggered rebuild to show up before counting.
	time.Sleep(300 * time.Millisecond)
	tmux, ok := testApp.Status().Get("tmux")
	require.True(t, ok)
	assert.Equal(t, 2, tmux.Runs, "writing 2.1.conf must not retrigger the template build")
	zsh, ok := testApp.Status().Get("zsh")
	require.True(t, ok)
	assert.Equal(t, 2, zsh.Runs, "only the new fragment rebuilds .zshrc")
	assert.Equal(t, "alias a=1\nalias n=1\nalias b=1\n", fileContent(zshrc))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch session did not stop")
	}
	assert.Contains(t, logs.String(), "Change detected.")
}
