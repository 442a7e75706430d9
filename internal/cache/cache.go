// Package cache keeps a bounded pool of editor instances warm so switching
// back to a document does not pay the widget construction cost again.
//
// Instances bound to open tabs live in the active set and are never evicted.
// Released instances move to the front of the pool; when the pool outgrows
// maxSize minus the active count, the least recently released instance is
// closed.
package cache

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/editor"
)

// DefaultMaxSize is the default bound on warm instances.
const DefaultMaxSize = 5

// InstanceID identifies an instance for its lifetime in the cache.
type InstanceID uint64

type entry struct {
	id InstanceID
	// tab is the last tab the instance was bound to.
	tab  string
	path string
	inst editor.Instance
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Active    int
	Pooled    int
	MaxSize   int
	WarmHits  int
	ColdMiss  int
	Evictions int
}

// Cache maps tab keys to live instances. It owns every instance it holds.
type Cache struct {
	mu      sync.Mutex
	factory editor.Factory
	active  map[string]*entry
	pool    []*entry // most recently released first
	maxSize int
	nextID  InstanceID
	log     logrus.FieldLogger

	warmHits  int
	coldMiss  int
	evictions int
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxSize sets the warm-reuse bound. Values below 1 are raised to 1.
func WithMaxSize(n int) Option {
	return func(c *Cache) { c.maxSize = max(n, 1) }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Cache) { c.log = log }
}

func New(factory editor.Factory, opts ...Option) *Cache {
	c := &Cache{
		factory: factory,
		active:  make(map[string]*entry),
		maxSize: DefaultMaxSize,
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.WithField("component", "cache")
	return c
}

// Acquire returns the instance for tab, reusing a pooled instance bound to
// the same path when one exists. Matching against the pool is by path, so
// reopening a file in a new tab still gets the warm instance.
func (c *Cache) Acquire(tab, path string) (editor.Instance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.active[tab]; ok {
		return e.inst, nil
	}

	if i := c.poolIndex(path); i >= 0 {
		e := c.pool[i]
		c.pool = append(c.pool[:i], c.pool[i+1:]...)
		if err := e.inst.Rebind(path); err != nil {
			c.log.WithError(err).WithField("path", path).Debug("pooled instance failed revalidation")
			c.destroy(e)
		} else {
			e.tab = tab
			c.active[tab] = e
			c.warmHits++
			c.log.WithFields(logrus.Fields{"tab": tab, "path": path, "id": e.id}).Debug("warm hit")
			return e.inst, nil
		}
	}

	inst, err := c.factory(path)
	if err != nil {
		return nil, fmt.Errorf("create editor for %s: %w", path, err)
	}
	c.nextID++
	e := &entry{id: c.nextID, tab: tab, path: path, inst: inst}
	c.active[tab] = e
	c.coldMiss++
	c.log.WithFields(logrus.Fields{"tab": tab, "path": path, "id": e.id}).Debug("cold miss")
	return inst, nil
}

func (c *Cache) poolIndex(path string) int {
	for i, e := range c.pool {
		if e.path == path {
			return i
		}
	}
	return -1
}

// Release moves tab's instance to the front of the pool and evicts from the
// back until the bound holds. Releasing an unknown tab is a no-op.
func (c *Cache) Release(tab string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.active[tab]
	if !ok {
		return
	}
	delete(c.active, tab)

	// Only one pooled instance per path; an older copy is superseded.
	if i := c.poolIndex(e.path); i >= 0 {
		old := c.pool[i]
		c.pool = append(c.pool[:i], c.pool[i+1:]...)
		c.destroy(old)
	}
	c.pool = append([]*entry{e}, c.pool...)
	c.enforce()
}

// Discard closes tab's instance without pooling it, whether it is active
// or was already released to the pool. A discarded instance can never be
// handed out again.
func (c *Cache) Discard(tab string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.active[tab]; ok {
		delete(c.active, tab)
		c.destroy(e)
	}
	for i, e := range c.pool {
		if e.tab == tab {
			c.pool = append(c.pool[:i], c.pool[i+1:]...)
			c.destroy(e)
			break
		}
	}
}

// enforce evicts least recently released instances until
// len(pool) <= maxSize - len(active). Callers hold c.mu.
func (c *Cache) enforce() {
	limit := max(c.maxSize-len(c.active), 0)
	for len(c.pool) > limit {
		last := c.pool[len(c.pool)-1]
		c.pool = c.pool[:len(c.pool)-1]
		c.evictions++
		c.log.WithFields(logrus.Fields{"path": last.path, "id": last.id}).Debug("evict")
		c.destroy(last)
	}
}

func (c *Cache) destroy(e *entry) {
	if err := e.inst.Close(); err != nil {
		c.log.WithError(err).WithField("path", e.path).Warn("close editor instance")
	}
}

// EvictAll closes every pooled instance. Active instances are untouched.
func (c *Cache) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.pool {
		c.evictions++
		c.destroy(e)
	}
	c.pool = nil
}

// Get returns tab's active instance, if any.
func (c *Cache) Get(tab string) (editor.Instance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.active[tab]
	if !ok {
		return nil, false
	}
	return e.inst, true
}

// SetMaxSize changes the bound and evicts as needed.
func (c *Cache) SetMaxSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = max(n, 1)
	c.enforce()
}

// PooledPaths returns the paths in the pool, most recently released first.
func (c *Cache) PooledPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.pool))
	for i, e := range c.pool {
		out[i] = e.path
	}
	return out
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Active:    len(c.active),
		Pooled:    len(c.pool),
		MaxSize:   c.maxSize,
		WarmHits:  c.warmHits,
		ColdMiss:  c.coldMiss,
		Evictions: c.evictions,
	}
}
