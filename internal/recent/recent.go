// Package recent keeps the bounded, deduplicated list of recently opened
// documents and persists it through a kvstore.Store.
package recent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/kvstore"
)

// MaxSize is the maximum number of entries kept.
const MaxSize = 20

// Entry is one recently opened document. Timestamp is in unix milliseconds.
type Entry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Registry holds at most MaxSize entries with at most one entry per path.
// Internal order is insertion order (most recent first); List sorts by
// timestamp. Persistence failures are logged and never returned from
// mutators.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	store   kvstore.Store
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func New(store kvstore.Store, log logrus.FieldLogger, opts ...Option) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{
		store: store,
		log:   log.WithField("component", "recent"),
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load replaces the in-memory list with the persisted one. An absent key
// leaves the list empty. A failed read or malformed value also resets the
// list to empty; the error is logged and returned for callers that care.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	raw, ok, err := r.store.Get(kvstore.KeyRecentFiles)
	if err != nil {
		r.log.WithError(err).Warn("load recent files")
		return fmt.Errorf("load recent files: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		r.log.WithError(err).Warn("parse recent files")
		return fmt.Errorf("parse recent files: %w", err)
	}
	r.entries = sanitize(entries)
	return nil
}

// sanitize enforces the registry invariants on data read from the store.
func sanitize(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Path == "" || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		if e.Name == "" {
			e.Name = baseName(e.Path)
		}
		out = append(out, e)
		if len(out) == MaxSize {
			break
		}
	}
	return out
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Add records path as the most recently opened document.
func (r *Registry) Add(path string) {
	if path == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UnixMilli()
	// Timestamps never go backwards relative to the current front entry, so
	// the newest addition always sorts first.
	if len(r.entries) > 0 && r.entries[0].Timestamp > ts {
		ts = r.entries[0].Timestamp
	}

	r.entries = without(r.entries, path)
	r.entries = append([]Entry{{Path: path, Name: baseName(path), Timestamp: ts}}, r.entries...)
	if len(r.entries) > MaxSize {
		r.entries = r.entries[:MaxSize]
	}
	r.save()
}

func without(entries []Entry, path string) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Path != path {
			out = append(out, e)
		}
	}
	return out
}

// List returns a copy of the entries sorted by descending timestamp.
func (r *Registry) List() []Entry {
	r.mu.Lock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Remove drops the entry for path.
func (r *Registry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = without(r.entries, path)
	r.save()
}

// RemoveInvalid drops every entry whose path is not in valid. It persists
// only when something was removed.
func (r *Registry) RemoveInvalid(valid map[string]struct{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.entries)
	kept := r.entries[:0:0]
	for _, e := range r.entries {
		if _, ok := valid[e.Path]; ok {
			kept = append(kept, e)
		}
	}
	r.entries = kept

	removed := before - len(kept)
	if removed > 0 {
		r.save()
	}
	return removed
}

// Clear empties the list.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.save()
}

// save persists the list. Callers hold r.mu.
func (r *Registry) save() {
	entries := r.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		r.log.WithError(err).Warn("encode recent files")
		return
	}
	if err := r.store.Set(kvstore.KeyRecentFiles, string(data)); err != nil {
		r.log.WithError(err).Warn("save recent files")
	}
}
