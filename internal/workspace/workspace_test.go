package workspace

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T, files ...string) *Workspace {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("# "+f+"\n"), 0644))
	}
	return New(root)
}

func TestListFiles(t *testing.T) {
	ws := setupWorkspace(t,
		"b.md",
		"a.md",
		"notes/c.md",
		"notes/readme.txt",
		".hidden/secret.md",
		".quire/state.md",
		"notes/.draft.md",
	)

	files, err := ws.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "notes/c.md"}, files)
}

func TestValidPaths(t *testing.T) {
	ws := setupWorkspace(t, "a.md", "d/b.md")

	valid, err := ws.ValidPaths()
	require.NoError(t, err)
	assert.Len(t, valid, 2)
	assert.Contains(t, valid, "d/b.md")
}

func TestExists(t *testing.T) {
	ws := setupWorkspace(t, "d/a.md")

	assert.True(t, ws.Exists("d/a.md"))
	assert.False(t, ws.Exists("d"))
	assert.False(t, ws.Exists("missing.md"))
}

func TestNormalize(t *testing.T) {
	ws := New("/work")
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"notes/a.md", "notes/a.md", false},
		{"  notes/a  ", "notes/a.md", false},
		{"./x/../y.md", "y.md", false},
		{"/work/deep/z.txt", "deep/z.txt", false},
		{"../escape.md", "", true},
		{"/elsewhere/a.md", "", true},
		{"", "", true},
		{".", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ws.Normalize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcher_RemoveTriggersCallback(t *testing.T) {
	ws := setupWorkspace(t, "a.md", "sub/b.md")

	var calls atomic.Int32
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	w, err := NewWatcher(ws.Root, log, func() { calls.Add(1) })
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond
	go w.Start()
	defer w.Stop()

	require.NoError(t, os.Remove(ws.Abs("a.md")))
	require.NoError(t, os.Remove(ws.Abs("sub/b.md")))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst should be coalesced")
}

func TestWatcher_IgnoresWrites(t *testing.T) {
	ws := setupWorkspace(t, "a.md")

	var calls atomic.Int32
	w, err := NewWatcher(ws.Root, nil, func() { calls.Add(1) })
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	go w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(ws.Abs("a.md"), []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(ws.Abs("new.md"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_NoCallbackAfterStop(t *testing.T) {
	ws := setupWorkspace(t, "a.md")

	var calls atomic.Int32
	w, err := NewWatcher(ws.Root, nil, func() { calls.Add(1) })
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	// Arm the debounce timer, then stop before it fires.
	w.handleEvent(fsnotify.Event{Name: ws.Abs("a.md"), Op: fsnotify.Remove})
	require.NoError(t, w.Stop())

	// A timer callback already past its Stop still must not call back.
	w.fire()
	w.handleEvent(fsnotify.Event{Name: ws.Abs("a.md"), Op: fsnotify.Remove})
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
