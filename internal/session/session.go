// Package session is the single mutable store for an editing session: open
// tabs, dirty flags, the active tab, and the layout flags. The editor cache
// and recent-files registry are injected so every feature observes the same
// state through one owner.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/breadcrumb"
	"github.com/pfassina/quire/internal/cache"
	"github.com/pfassina/quire/internal/kvstore"
	"github.com/pfassina/quire/internal/markdown"
	"github.com/pfassina/quire/internal/recent"
)

var (
	ErrTabNotFound    = errors.New("tab not found")
	ErrUnsavedChanges = errors.New("tab has unsaved changes")
	ErrNoActiveTab    = errors.New("no active tab")
)

// TabID is an opaque tab identity.
type TabID string

// Tab is an open-document handle. Tabs returned by accessors are copies.
type Tab struct {
	ID    TabID
	Path  string
	Title string
	Dirty bool

	// content is the last known document text, kept so an evicted editor
	// instance can be rebuilt without losing unsaved edits.
	content string
	// gen counts edits; a save only clears Dirty if no edit raced it.
	gen uint64
}

// Titler derives a tab title from a path and the document content.
type Titler func(path string, content []byte) string

// Deps are the collaborators a Session is built from.
type Deps struct {
	Cache  *cache.Cache
	Recent *recent.Registry
	Store  kvstore.Store
	Log    logrus.FieldLogger
	Titler Titler
	NewID  func() TabID
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	tabs     []*Tab
	activeID TabID
	layout   Layout

	cache     *cache.Cache
	recent    *recent.Registry
	snapshots *Store
	log       logrus.FieldLogger
	titler    Titler
	newID     func() TabID
}

func New(d Deps) *Session {
	s := &Session{
		layout:    Default().Layout,
		cache:     d.Cache,
		recent:    d.Recent,
		snapshots: NewStore(d.Store),
		log:       d.Log,
		titler:    d.Titler,
		newID:     d.NewID,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "session")
	if s.titler == nil {
		s.titler = func(p string, content []byte) string { return markdown.TitleOrName(p, content) }
	}
	if s.newID == nil {
		s.newID = func() TabID { return TabID(uuid.NewString()) }
	}
	return s
}

func (s *Session) Cache() *cache.Cache {
	return s.cache
}

func (s *Session) Recent() *recent.Registry {
	return s.recent
}

// find returns the tab and its index. Callers hold s.mu.
func (s *Session) find(id TabID) (*Tab, int) {
	for i, t := range s.tabs {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func (s *Session) findPath(path string) *Tab {
	for _, t := range s.tabs {
		if t.Path == path {
			return t
		}
	}
	return nil
}

// Tabs returns copies of the open tabs in display order.
func (s *Session) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = *t
	}
	return out
}

// Tab returns a copy of the tab with id.
func (s *Session) Tab(id TabID) (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, _ := s.find(id); t != nil {
		return *t, true
	}
	return Tab{}, false
}

func (s *Session) ActiveTabID() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveTab returns a copy of the active tab.
func (s *Session) ActiveTab() (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, _ := s.find(s.activeID); t != nil {
		return *t, true
	}
	return Tab{}, false
}

// Content returns the current text of tab id.
func (s *Session) Content(id TabID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.find(id)
	if t == nil {
		return "", ErrTabNotFound
	}
	if inst, ok := s.cache.Get(string(id)); ok {
		return inst.Content(), nil
	}
	return t.content, nil
}

// Breadcrumbs returns the collapsed breadcrumb for the active document.
func (s *Session) Breadcrumbs() []breadcrumb.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, _ := s.find(s.activeID); t != nil {
		return breadcrumb.Decompose(t.Path)
	}
	return nil
}

func (s *Session) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

func (s *Session) SetLayout(l Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
}

// Open shows path in a tab, reusing the tab already showing it.
func (s *Session) Open(path string) (TabID, error) {
	if path == "" {
		return "", fmt.Errorf("open: empty path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.findPath(path); t != nil {
		return t.ID, s.activate(t)
	}

	t := &Tab{ID: s.newID(), Path: path, Title: s.titler(path, nil)}
	s.tabs = append(s.tabs, t)
	if err := s.activate(t); err != nil {
		s.tabs = s.tabs[:len(s.tabs)-1]
		return "", err
	}
	return t.ID, nil
}

// Activate makes id the active tab.
func (s *Session) Activate(id TabID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.find(id)
	if t == nil {
		return ErrTabNotFound
	}
	return s.activate(t)
}

// activate acquires t's editor, releases the previous tab's editor to the
// warm pool and records t in the recent list. Callers hold s.mu.
func (s *Session) activate(t *Tab) error {
	inst, err := s.cache.Acquire(string(t.ID), t.Path)
	if err != nil {
		return fmt.Errorf("activate %s: %w", t.Path, err)
	}

	if t.Dirty {
		// The instance may be fresh or pooled; either way the tab holds
		// the authoritative unsaved text.
		inst.SetContent(t.content)
	} else {
		t.content = inst.Content()
		t.Title = s.titler(t.Path, []byte(t.content))
	}

	if prev := s.activeID; prev != "" && prev != t.ID {
		s.cache.Release(string(prev))
	}
	s.activeID = t.ID
	s.recent.Add(t.Path)
	return nil
}

// Edit replaces tab id's content and marks it dirty.
func (s *Session) Edit(id TabID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.find(id)
	if t == nil {
		return ErrTabNotFound
	}
	if inst, ok := s.cache.Get(string(id)); ok {
		inst.SetContent(content)
	}
	t.content = content
	t.Dirty = true
	t.gen++
	return nil
}

// MarkDirty flags tab id as having unsaved edits.
func (s *Session) MarkDirty(id TabID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.find(id)
	if t == nil {
		return ErrTabNotFound
	}
	t.Dirty = true
	t.gen++
	return nil
}

// DirtyTabs returns copies of every tab with unsaved edits.
func (s *Session) DirtyTabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Tab
	for _, t := range s.tabs {
		if t.Dirty {
			out = append(out, *t)
		}
	}
	return out
}

func (s *Session) HasDirtyTabs() bool {
	return len(s.DirtyTabs()) > 0
}

func (s *Session) ActiveDirty() bool {
	t, ok := s.ActiveTab()
	return ok && t.Dirty
}

// SaveActive saves the active tab through its editor instance. It is a
// no-op when there is no active tab or the active tab is clean. The state
// is read when the save starts; an edit that lands while the save is in
// flight keeps the tab dirty, and a save that fails because the tab was
// closed meanwhile is dropped. silent suppresses the success log line.
func (s *Session) SaveActive(ctx context.Context, silent bool) error {
	s.mu.Lock()
	t, _ := s.find(s.activeID)
	if t == nil || !t.Dirty {
		s.mu.Unlock()
		return nil
	}
	inst, ok := s.cache.Get(string(t.ID))
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("save %s: no editor instance", t.Path)
	}
	id, path, gen := t.ID, t.Path, t.gen
	s.mu.Unlock()

	saveErr := inst.Save(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if saveErr != nil {
		// A tab closed while its save was in flight has nothing left to
		// save; its instance may already be closed under us.
		if t, _ := s.find(id); t == nil {
			s.log.WithError(saveErr).WithField("path", path).Debug("save of closed tab dropped")
			return nil
		}
		return fmt.Errorf("save %s: %w", path, saveErr)
	}
	if t, _ := s.find(id); t != nil && t.gen == gen {
		t.Dirty = false
		t.Title = s.titler(t.Path, []byte(t.content))
	}

	entry := s.log.WithField("path", path)
	if silent {
		entry.Debug("saved")
	} else {
		entry.Info("saved")
	}
	return nil
}

// Close closes tab id. A dirty tab is refused with ErrUnsavedChanges
// unless force is set, in which case its edits are discarded. Closing the
// active tab activates its neighbour.
func (s *Session) Close(id TabID, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, idx := s.find(id)
	if t == nil {
		return ErrTabNotFound
	}
	if t.Dirty && !force {
		return ErrUnsavedChanges
	}

	if t.Dirty {
		s.cache.Discard(string(id))
	} else {
		s.cache.Release(string(id))
	}
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)

	if s.activeID != id {
		return nil
	}
	s.activeID = ""
	if len(s.tabs) == 0 {
		return nil
	}
	next := s.tabs[min(idx, len(s.tabs)-1)]
	return s.activate(next)
}

// Move reorders the tab at index from to index to.
func (s *Session) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.tabs) || to < 0 || to >= len(s.tabs) {
		return fmt.Errorf("move tab %d to %d: index out of range", from, to)
	}
	t := s.tabs[from]
	s.tabs = append(s.tabs[:from], s.tabs[from+1:]...)
	s.tabs = append(s.tabs[:to], append([]*Tab{t}, s.tabs[to:]...)...)
	return nil
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{Layout: s.layout}
	for _, t := range s.tabs {
		snap.OpenFiles = append(snap.OpenFiles, t.Path)
		if t.ID == s.activeID {
			snap.ActiveFile = t.Path
		}
	}
	return snap
}

// Persist writes the open files, active file and layout.
func (s *Session) Persist() error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()
	return s.snapshots.Save(snap)
}

// Restore reopens the persisted tabs whose files still satisfy exists and
// activates the persisted active file. A failed load leaves the session
// empty with default layout; the error is returned for logging.
func (s *Session) Restore(exists func(path string) bool) error {
	snap, loadErr := s.snapshots.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = snap.Layout

	var active *Tab
	for _, p := range snap.OpenFiles {
		if p == "" || s.findPath(p) != nil || (exists != nil && !exists(p)) {
			continue
		}
		t := &Tab{ID: s.newID(), Path: p, Title: s.titler(p, nil)}
		s.tabs = append(s.tabs, t)
		if p == snap.ActiveFile {
			active = t
		}
	}
	if active == nil && len(s.tabs) > 0 {
		active = s.tabs[len(s.tabs)-1]
	}
	if active != nil {
		if err := s.activate(active); err != nil {
			return errors.Join(loadErr, err)
		}
	}
	return loadErr
}

// Teardown releases every editor, empties the warm pool and persists the
// snapshot. Unsaved edits are not written.
func (s *Session) Teardown() error {
	s.mu.Lock()
	snap := s.snapshot()
	for _, t := range s.tabs {
		s.cache.Release(string(t.ID))
	}
	s.mu.Unlock()

	s.cache.EvictAll()
	return s.snapshots.Save(snap)
}
