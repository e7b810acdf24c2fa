package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

// AssertFile checks that path holds exactly want and prints a diff when it
// does not.
func AssertFile(t *testing.T, fs afero.Fs, path, want string) {
	t.Helper()
	if diff := cmp.Diff(want, ReadFile(t, fs, path)); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", path, diff)
	}
}

// AssertFiles runs AssertFile for every entry of want.
func AssertFiles(t *testing.T, fs afero.Fs, want map[string]string) {
	t.Helper()
	for path, content := range want {
		AssertFile(t, fs, path, content)
	}
}

// AssertNoFile fails when path exists.
func AssertNoFile(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if Exists(t, fs, path) {
		t.Errorf("%s should not exist", path)
	}
}
