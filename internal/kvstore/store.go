// Package kvstore is the durable string-keyed store that session features
// persist through. It offers no transactions beyond a single key write.
package kvstore

import (
	"errors"
	"sync"
)

// Well-known keys.
const (
	KeyAutoSave    = "editorAutoSave"
	KeyRecentFiles = "editorRecentFiles"
	KeySession     = "editorSession"
)

// Store is a fallible string-keyed store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

var errInjected = errors.New("kvstore: injected failure")

// Memory is an in-process Store. FailGet and FailSet make the next calls
// return an error, which lets callers exercise their degraded paths.
type Memory struct {
	mu      sync.Mutex
	data    map[string]string
	writes  int
	FailGet bool
	FailSet bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return "", false, errInjected
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet {
		return errInjected
	}
	m.data[key] = value
	m.writes++
	return nil
}

// Writes reports how many successful Set calls the store has served.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
