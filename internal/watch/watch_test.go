package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettle = 250 * time.Millisecond

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func expectEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a settled event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, w *Watcher, within time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(within):
	}
}

func TestWatcher_BurstCollapsesToOneEvent(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "tmux.conf.tmpl")
	writeFile(t, tmpl, "v0")

	w, err := New([]string{tmpl}, WithSettleDelay(testSettle))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	for i := 0; i < 5; i++ {
		writeFile(t, tmpl, "v"+string(rune('1'+i)))
		time.Sleep(10 * time.Millisecond)
	}

	ev := expectEvent(t, w)
	assert.Equal(t, tmpl, ev.Path)
	expectNoEvent(t, w, 3*testSettle)
}

func TestWatcher_IgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.zsh"), "")

	w, err := New([]string{filepath.Join(dir, "*.zsh")}, WithSettleDelay(testSettle))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	expectNoEvent(t, w, 3*testSettle)

	writeFile(t, filepath.Join(dir, "a.zsh"), "alias ll='ls -l'\n")
	ev := expectEvent(t, w)
	assert.Equal(t, filepath.Join(dir, "a.zsh"), ev.Path)
}

func TestWatcher_RecursivePattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	w, err := New([]string{filepath.Join(dir, "**", "*.zsh")}, WithSettleDelay(testSettle))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	target := filepath.Join(dir, "nested", "b.zsh")
	writeFile(t, target, "export PATH=$PATH\n")

	ev := expectEvent(t, w)
	assert.Equal(t, target, ev.Path)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "missing", "x.tmpl")})
	require.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "[")})
	require.Error(t, err)
}

func TestWatcher_CloseClosesChannels(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "*")}, WithSettleDelay(testSettle))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}

func TestWithin(t *testing.T) {
	base := filepath.Join("/", "a", "b")
	cases := []struct {
		path string
		want bool
	}{
		{base, true},
		{filepath.Join(base, "c"), true},
		{filepath.Join(base, "c", "d"), true},
		{filepath.Join("/", "a", "bc"), false},
		{filepath.Join("/", "a", "b-old", "c"), false},
		{filepath.Join("/", "a"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, within(tc.path, base), tc.path)
	}
	assert.True(t, within(filepath.Join("/", "x"), string(filepath.Separator)), "filesystem root")
}
