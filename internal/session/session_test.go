package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/quire/internal/breadcrumb"
	"github.com/pfassina/quire/internal/cache"
	"github.com/pfassina/quire/internal/editor"
	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/recent"
)

type fixture struct {
	root  string
	kv    *kvstore.Memory
	cache *cache.Cache
	sess  *Session
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sequentialIDs() func() TabID {
	n := 0
	return func() TabID {
		n++
		return TabID(fmt.Sprintf("tab-%d", n))
	}
}

func newFixture(t *testing.T, factory editor.Factory, cacheOpts ...cache.Option) *fixture {
	t.Helper()
	root := t.TempDir()
	if factory == nil {
		factory = func(path string) (editor.Instance, error) {
			return editor.OpenBuffer(root, path)
		}
	}
	log := quietLogger()
	kv := kvstore.NewMemory()
	c := cache.New(factory, append([]cache.Option{cache.WithLogger(log)}, cacheOpts...)...)
	s := New(Deps{
		Cache:  c,
		Recent: recent.New(kv, log),
		Store:  kv,
		Log:    log,
		NewID:  sequentialIDs(),
	})
	return &fixture{root: root, kv: kv, cache: c, sess: s}
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestOpen_CreatesAndActivates(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "docs/a.md", "# Alpha\n")

	id, err := f.sess.Open("docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, id, f.sess.ActiveTabID())

	tab, ok := f.sess.ActiveTab()
	require.True(t, ok)
	assert.Equal(t, "Alpha", tab.Title)
	assert.False(t, tab.Dirty)

	list := f.sess.Recent().List()
	require.Len(t, list, 1)
	assert.Equal(t, "docs/a.md", list[0].Path)

	assert.Equal(t, []string{"docs", "a.md"}, func() []string {
		var out []string
		for _, it := range f.sess.Breadcrumbs() {
			out = append(out, it.Name)
		}
		return out
	}())
}

func TestOpen_ReusesTabForSamePath(t *testing.T) {
	f := newFixture(t, nil)
	a, err := f.sess.Open("a.md")
	require.NoError(t, err)
	_, err = f.sess.Open("b.md")
	require.NoError(t, err)

	again, err := f.sess.Open("a.md")
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Len(t, f.sess.Tabs(), 2)
	assert.Equal(t, a, f.sess.ActiveTabID())
}

func TestOpen_EmptyPath(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.sess.Open("")
	assert.Error(t, err)
}

func TestOpen_FactoryFailureRemovesTab(t *testing.T) {
	f := newFixture(t, func(string) (editor.Instance, error) { return nil, errors.New("boom") })
	_, err := f.sess.Open("a.md")
	assert.Error(t, err)
	assert.Empty(t, f.sess.Tabs())
	assert.Equal(t, TabID(""), f.sess.ActiveTabID())
}

func TestActivate_ReleasesPrevious(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.sess.Open("a.md")
	require.NoError(t, err)
	_, err = f.sess.Open("b.md")
	require.NoError(t, err)

	st := f.cache.Stats()
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, []string{"a.md"}, f.cache.PooledPaths())

	assert.ErrorIs(t, f.sess.Activate("missing"), ErrTabNotFound)
}

func TestEditAndSaveActive(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a.md", "old")
	id, err := f.sess.Open("a.md")
	require.NoError(t, err)

	require.NoError(t, f.sess.Edit(id, "# New\n"))
	assert.True(t, f.sess.ActiveDirty())
	assert.True(t, f.sess.HasDirtyTabs())

	require.NoError(t, f.sess.SaveActive(context.Background(), true))
	tab, _ := f.sess.Tab(id)
	assert.False(t, tab.Dirty)
	assert.Equal(t, "New", tab.Title)

	data, err := os.ReadFile(filepath.Join(f.root, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "# New\n", string(data))
}

func TestSaveActive_NoActiveOrClean(t *testing.T) {
	f := newFixture(t, nil)
	assert.NoError(t, f.sess.SaveActive(context.Background(), false))

	_, err := f.sess.Open("a.md")
	require.NoError(t, err)
	assert.NoError(t, f.sess.SaveActive(context.Background(), false))
	_, err = os.Stat(filepath.Join(f.root, "a.md"))
	assert.True(t, os.IsNotExist(err), "clean tab must not be written")
}

type blockingInstance struct {
	mu      sync.Mutex
	path    string
	content string
	started chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingInstance) Path() string { return b.path }
func (b *blockingInstance) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}
func (b *blockingInstance) SetContent(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = s
}
func (b *blockingInstance) Dirty() bool         { return false }
func (b *blockingInstance) Rebind(string) error { return nil }
func (b *blockingInstance) Close() error        { return nil }
func (b *blockingInstance) Save(context.Context) error {
	if b.started != nil {
		close(b.started)
		<-b.release
	}
	return b.err
}

func TestSaveActive_EditDuringSaveKeepsDirty(t *testing.T) {
	inst := &blockingInstance{path: "a.md", started: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, func(string) (editor.Instance, error) { return inst, nil })

	id, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.Edit(id, "one"))

	done := make(chan error)
	go func() { done <- f.sess.SaveActive(context.Background(), true) }()

	<-inst.started
	require.NoError(t, f.sess.Edit(id, "two"))
	close(inst.release)
	require.NoError(t, <-done)

	tab, _ := f.sess.Tab(id)
	assert.True(t, tab.Dirty)
}

func TestSaveActive_FailureLeavesDirty(t *testing.T) {
	inst := &blockingInstance{path: "a.md", err: errors.New("disk full")}
	f := newFixture(t, func(string) (editor.Instance, error) { return inst, nil })

	id, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.MarkDirty(id))

	err = f.sess.SaveActive(context.Background(), true)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, f.sess.ActiveDirty())
}

func TestSaveActive_TabClosedMidSaveIsDropped(t *testing.T) {
	inst := &blockingInstance{
		path:    "a.md",
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     errors.New("buffer closed"),
	}
	f := newFixture(t, func(string) (editor.Instance, error) { return inst, nil })

	id, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.MarkDirty(id))

	done := make(chan error)
	go func() { done <- f.sess.SaveActive(context.Background(), true) }()

	<-inst.started
	require.NoError(t, f.sess.Close(id, true))
	close(inst.release)

	assert.NoError(t, <-done)
	assert.Empty(t, f.sess.Tabs())
}

func TestClose(t *testing.T) {
	f := newFixture(t, nil)
	a, _ := f.sess.Open("a.md")
	b, _ := f.sess.Open("b.md")
	c, _ := f.sess.Open("c.md")

	require.NoError(t, f.sess.Edit(c, "unsaved"))
	assert.ErrorIs(t, f.sess.Close(c, false), ErrUnsavedChanges)
	assert.Len(t, f.sess.Tabs(), 3)

	// Forced close of the last, active tab activates the new last tab.
	require.NoError(t, f.sess.Close(c, true))
	assert.Equal(t, b, f.sess.ActiveTabID())
	assert.NotContains(t, f.cache.PooledPaths(), "c.md")

	// Closing the first, active tab activates the tab that took its index.
	require.NoError(t, f.sess.Activate(a))
	require.NoError(t, f.sess.Close(a, false))
	assert.Equal(t, b, f.sess.ActiveTabID())

	require.NoError(t, f.sess.Close(b, false))
	assert.Equal(t, TabID(""), f.sess.ActiveTabID())
	assert.Empty(t, f.sess.Tabs())

	assert.ErrorIs(t, f.sess.Close(b, false), ErrTabNotFound)
}

func TestClose_InactiveKeepsActive(t *testing.T) {
	f := newFixture(t, nil)
	a, _ := f.sess.Open("a.md")
	b, _ := f.sess.Open("b.md")

	require.NoError(t, f.sess.Close(a, false))
	assert.Equal(t, b, f.sess.ActiveTabID())
}

func TestClose_InactiveDirtyRefusedWithoutForce(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a.md", "disk")

	a, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.Edit(a, "draft"))
	b, err := f.sess.Open("b.md")
	require.NoError(t, err)

	assert.ErrorIs(t, f.sess.Close(a, false), ErrUnsavedChanges)
	assert.Len(t, f.sess.Tabs(), 2)
	assert.Equal(t, b, f.sess.ActiveTabID())

	tab, ok := f.sess.Tab(a)
	require.True(t, ok)
	assert.True(t, tab.Dirty)
	content, err := f.sess.Content(a)
	require.NoError(t, err)
	assert.Equal(t, "draft", content)
}

func TestClose_ForceInactiveDirtyDiscardsEdits(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a.md", "disk")

	a, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.Edit(a, "discarded"))
	b, err := f.sess.Open("b.md")
	require.NoError(t, err)
	require.Contains(t, f.cache.PooledPaths(), "a.md")

	require.NoError(t, f.sess.Close(a, true))
	assert.NotContains(t, f.cache.PooledPaths(), "a.md")
	assert.Equal(t, b, f.sess.ActiveTabID())

	reopened, err := f.sess.Open("a.md")
	require.NoError(t, err)
	content, err := f.sess.Content(reopened)
	require.NoError(t, err)
	assert.Equal(t, "disk", content)
	assert.False(t, f.sess.ActiveDirty())

	data, err := os.ReadFile(filepath.Join(f.root, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "disk", string(data))
}

func TestUnsavedEditsSurviveEviction(t *testing.T) {
	f := newFixture(t, nil, cache.WithMaxSize(1))
	f.write(t, "a.md", "disk")

	a, err := f.sess.Open("a.md")
	require.NoError(t, err)
	require.NoError(t, f.sess.Edit(a, "edited"))

	_, err = f.sess.Open("b.md")
	require.NoError(t, err)
	assert.Empty(t, f.cache.PooledPaths(), "a.md should have been evicted")

	require.NoError(t, f.sess.Activate(a))
	content, err := f.sess.Content(a)
	require.NoError(t, err)
	assert.Equal(t, "edited", content)
	assert.True(t, f.sess.ActiveDirty())
}

func TestMove(t *testing.T) {
	f := newFixture(t, nil)
	f.sess.Open("a.md")
	f.sess.Open("b.md")
	f.sess.Open("c.md")

	require.NoError(t, f.sess.Move(2, 0))
	var order []string
	for _, tab := range f.sess.Tabs() {
		order = append(order, tab.Path)
	}
	assert.Equal(t, []string{"c.md", "a.md", "b.md"}, order)
	assert.Error(t, f.sess.Move(0, 3))
}

func TestPersistRestore(t *testing.T) {
	f := newFixture(t, nil)
	f.sess.Open("a.md")
	f.sess.Open("dir/b.md")
	f.sess.Open("gone.md")
	_, err := f.sess.Open("dir/b.md")
	require.NoError(t, err)
	f.sess.SetLayout(Layout{ShowBreadcrumb: false, ShowRecent: true})
	require.NoError(t, f.sess.Persist())

	restored := New(Deps{
		Cache:  cache.New(func(p string) (editor.Instance, error) { return editor.OpenBuffer(f.root, p) }),
		Recent: recent.New(f.kv, quietLogger()),
		Store:  f.kv,
		Log:    quietLogger(),
	})
	err = restored.Restore(func(p string) bool { return p != "gone.md" })
	require.NoError(t, err)

	var paths []string
	for _, tab := range restored.Tabs() {
		paths = append(paths, tab.Path)
	}
	assert.Equal(t, []string{"a.md", "dir/b.md"}, paths)
	active, ok := restored.ActiveTab()
	require.True(t, ok)
	assert.Equal(t, "dir/b.md", active.Path)
	assert.Equal(t, Layout{ShowBreadcrumb: false, ShowRecent: true}, restored.Layout())
}

func TestRestore_MalformedSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.kv.Set(kvstore.KeySession, "{"))

	assert.Error(t, f.sess.Restore(nil))
	assert.Empty(t, f.sess.Tabs())
	assert.Equal(t, Default().Layout, f.sess.Layout())
}

func TestTeardown(t *testing.T) {
	f := newFixture(t, nil)
	f.sess.Open("a.md")
	f.sess.Open("b.md")

	require.NoError(t, f.sess.Teardown())
	st := f.cache.Stats()
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, 0, st.Pooled)

	snap, err := NewStore(f.kv).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, snap.OpenFiles)
	assert.Equal(t, "b.md", snap.ActiveFile)
}

func TestBreadcrumbs(t *testing.T) {
	f := newFixture(t, nil)
	assert.Nil(t, f.sess.Breadcrumbs())

	f.sess.Open("a/b/c/d/e/f.md")
	items := f.sess.Breadcrumbs()
	require.Len(t, items, breadcrumb.MaxVisibleItems+1)
	assert.True(t, items[1].IsEllipsis)
}
