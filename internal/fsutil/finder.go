// Package fsutil provides file system helpers on top of afero.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FindFilesByExtension recursively searches root for all files ending with
// extension and returns their full paths in lexical order.
func FindFilesByExtension(fs afero.Fs, root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ListFiles returns the full paths of the regular files directly inside dir,
// sorted by file name. Subdirectories are skipped.
func ListFiles(fs afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, info.Name()))
	}
	sort.Strings(files)
	return files, nil
}
