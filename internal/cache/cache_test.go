package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/quire/internal/editor"
)

type fakeInstance struct {
	path      string
	content   string
	closed    bool
	rebindErr error
	rebinds   int
}

func (f *fakeInstance) Path() string               { return f.path }
func (f *fakeInstance) Content() string            { return f.content }
func (f *fakeInstance) SetContent(s string)        { f.content = s }
func (f *fakeInstance) Dirty() bool                { return false }
func (f *fakeInstance) Save(context.Context) error { return nil }
func (f *fakeInstance) Close() error               { f.closed = true; return nil }
func (f *fakeInstance) Rebind(path string) error {
	f.rebinds++
	if f.rebindErr != nil {
		return f.rebindErr
	}
	f.path = path
	return nil
}

type recorder struct {
	built map[string]int
	all   []*fakeInstance
	fail  bool
}

func (r *recorder) factory(path string) (editor.Instance, error) {
	if r.fail {
		return nil, errors.New("boom")
	}
	if r.built == nil {
		r.built = map[string]int{}
	}
	r.built[path]++
	inst := &fakeInstance{path: path}
	r.all = append(r.all, inst)
	return inst, nil
}

func newCache(r *recorder, opts ...Option) *Cache {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(r.factory, append([]Option{WithLogger(log)}, opts...)...)
}

func TestAcquire_ActiveHit(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	a, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	b, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.built["a.md"])
}

func TestAcquire_WarmHitAcrossTabs(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	first, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	c.Release("t1")

	second, err := c.Acquire("t2", "a.md")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.built["a.md"])
	assert.Equal(t, 1, first.(*fakeInstance).rebinds)

	st := c.Stats()
	assert.Equal(t, 1, st.WarmHits)
	assert.Equal(t, 1, st.ColdMiss)
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, 0, st.Pooled)
}

func TestAcquire_FailedRebindFallsBackToCold(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	first, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	first.(*fakeInstance).rebindErr = errors.New("gone")
	c.Release("t1")

	second, err := c.Acquire("t2", "a.md")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, first.(*fakeInstance).closed)
	assert.Equal(t, 2, r.built["a.md"])
}

func TestAcquire_FactoryError(t *testing.T) {
	c := newCache(&recorder{fail: true})
	_, err := c.Acquire("t1", "a.md")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Stats().Active)
}

func TestRelease_EvictsLeastRecentlyReleased(t *testing.T) {
	r := &recorder{}
	c := newCache(r, WithMaxSize(5))

	for i := 1; i <= 6; i++ {
		tab := fmt.Sprintf("t%d", i)
		_, err := c.Acquire(tab, fmt.Sprintf("p%d.md", i))
		require.NoError(t, err)
		c.Release(tab)
	}

	assert.Equal(t, []string{"p6.md", "p5.md", "p4.md", "p3.md", "p2.md"}, c.PooledPaths())
	assert.True(t, r.all[0].closed, "p1 should be evicted")
	for _, inst := range r.all[1:] {
		assert.False(t, inst.closed)
	}
	assert.Equal(t, 1, c.Stats().Evictions)

	for i := 2; i <= 6; i++ {
		inst, err := c.Acquire(fmt.Sprintf("n%d", i), fmt.Sprintf("p%d.md", i))
		require.NoError(t, err)
		assert.Same(t, r.all[i-1], inst)
	}
	assert.Equal(t, 1, r.built["p2.md"])
	assert.Equal(t, 5, c.Stats().WarmHits)
}

func TestRelease_ActiveInstancesShrinkPool(t *testing.T) {
	r := &recorder{}
	c := newCache(r, WithMaxSize(3))

	for _, p := range []string{"a", "b", "c", "d"} {
		_, err := c.Acquire("open-"+p, p)
		require.NoError(t, err)
	}
	// Three remaining active instances leave no room in the pool.
	c.Release("open-a")
	assert.Empty(t, c.PooledPaths())
	assert.True(t, r.all[0].closed)

	c.Release("open-b")
	assert.Equal(t, []string{"b"}, c.PooledPaths())

	// Active instances are never evicted.
	inst, ok := c.Get("open-c")
	require.True(t, ok)
	assert.False(t, inst.(*fakeInstance).closed)
}

func TestRelease_Unknown(t *testing.T) {
	c := newCache(&recorder{})
	c.Release("nope")
	assert.Equal(t, Stats{MaxSize: DefaultMaxSize}, c.Stats())
}

func TestRelease_SupersedesSamePath(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	_, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	_, err = c.Acquire("t2", "a.md")
	require.NoError(t, err)

	c.Release("t1")
	c.Release("t2")
	assert.Equal(t, []string{"a.md"}, c.PooledPaths())
	assert.True(t, r.all[0].closed)
	assert.False(t, r.all[1].closed)
}

func TestDiscard(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	_, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	c.Discard("t1")

	assert.True(t, r.all[0].closed)
	assert.Empty(t, c.PooledPaths())
	_, ok := c.Get("t1")
	assert.False(t, ok)
}

func TestDiscard_PooledInstance(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	_, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	_, err = c.Acquire("t2", "b.md")
	require.NoError(t, err)
	c.Release("t1")
	require.Equal(t, []string{"a.md"}, c.PooledPaths())

	c.Discard("t1")
	assert.True(t, r.all[0].closed)
	assert.Empty(t, c.PooledPaths())

	// Reopening the path must build a fresh instance.
	inst, err := c.Acquire("t3", "a.md")
	require.NoError(t, err)
	assert.NotSame(t, r.all[0], inst)
	assert.Equal(t, 2, r.built["a.md"])
}

func TestDiscard_LeavesOtherTabsPooled(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	_, err := c.Acquire("t1", "a.md")
	require.NoError(t, err)
	_, err = c.Acquire("t2", "b.md")
	require.NoError(t, err)
	c.Release("t1")
	c.Release("t2")

	c.Discard("t9")
	assert.Equal(t, []string{"b.md", "a.md"}, c.PooledPaths())
	assert.False(t, r.all[0].closed)
	assert.False(t, r.all[1].closed)
}

func TestEvictAll(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	for _, tab := range []string{"a", "b", "c"} {
		_, err := c.Acquire(tab, tab+".md")
		require.NoError(t, err)
	}
	c.Release("a")
	c.Release("b")
	c.EvictAll()

	assert.True(t, r.all[0].closed)
	assert.True(t, r.all[1].closed)
	assert.False(t, r.all[2].closed)
	assert.Equal(t, 1, c.Stats().Active)
	assert.Equal(t, 0, c.Stats().Pooled)
}

func TestSetMaxSize(t *testing.T) {
	r := &recorder{}
	c := newCache(r)

	for _, p := range []string{"a", "b", "c", "d"} {
		_, err := c.Acquire(p, p)
		require.NoError(t, err)
		c.Release(p)
	}
	c.SetMaxSize(2)
	assert.Equal(t, []string{"d", "c"}, c.PooledPaths())

	c.SetMaxSize(0)
	assert.Equal(t, 1, c.Stats().MaxSize)
}
