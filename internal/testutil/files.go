// Package testutil holds helpers shared by package tests: building file trees
// on afero or on disk and asserting on the artifacts a build leaves behind.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// MemFs returns an in-memory filesystem holding files, keyed by absolute path.
func MemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, "/", files)
	return fs
}

// WriteFiles creates every file under root, making parent directories as
// needed.
func WriteFiles(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

// WriteTree creates files inside a fresh temporary directory on disk and
// returns that directory.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, afero.NewOsFs(), dir, files)
	return dir
}

// ReadFile returns the content of path, failing the test if it is missing.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether path exists on fs.
func Exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	_, err := fs.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	require.NoError(t, err)
	return true
}
