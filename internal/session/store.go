package session

import (
	"encoding/json"
	"fmt"

	"github.com/pfassina/quire/internal/kvstore"
)

// Store handles session snapshot persistence.
type Store struct {
	kv kvstore.Store
}

// NewStore creates a store that persists through kv.
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Load reads the snapshot. An absent key yields the default snapshot; a
// failed read or malformed value yields the default plus an error.
func (s *Store) Load() (Snapshot, error) {
	snap := Default()

	raw, ok, err := s.kv.Get(kvstore.KeySession)
	if err != nil {
		return snap, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return snap, nil
	}

	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Default(), fmt.Errorf("parse session: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot.
func (s *Store) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.kv.Set(kvstore.KeySession, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
