package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles_SortedAndFlat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/b.zsh", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/a.zsh", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/nested/c.zsh", []byte("c"), 0o644))

	files, err := ListFiles(fs, "/src")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/src", "a.zsh"), filepath.Join("/src", "b.zsh")}, files)
}

func TestListFiles_MissingDir(t *testing.T) {
	_, err := ListFiles(afero.NewMemMapFs(), "/nope")
	require.Error(t, err)
}

func TestFindFilesByExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/b.hcl", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/sub/a.hcl", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/readme.md", nil, 0o644))

	files, err := FindFilesByExtension(fs, "/cfg", ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/cfg", "b.hcl"), filepath.Join("/cfg", "sub", "a.hcl")}, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension(afero.NewMemMapFs(), "/", "")
	})
}

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := "/out/tmux/2.3.conf"

	require.NoError(t, WriteFileAtomic(fs, target, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(fs, target, []byte("second"), 0o644))

	data, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := afero.ReadDir(fs, "/out/tmux")
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
	assert.Equal(t, "2.3.conf", entries[0].Name())
}

func TestWriteFileAtomic_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := WriteFileAtomic(fs, "/out/.zshrc", []byte("x"), 0o644)
	require.Error(t, err)
}
