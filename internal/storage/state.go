package storage

import (
	"fmt"

	"wigglebot/datastore"
	"wigglebot/internal/selfaware"
)

const stateKey = "self_awareness"

// StateStore keeps the self-awareness record in the JSON datastore.
type StateStore struct {
	ds *datastore.DataStore
}

// NewStateStore opens the datastore file at path.
func NewStateStore(path string) (*StateStore, error) {
	ds, err := datastore.New(path)
	if err != nil {
		return nil, err
	}
	return &StateStore{ds: ds}, nil
}

// LoadState returns ErrNotFound when the record was never saved.
func (s *StateStore) LoadState() (*selfaware.State, error) {
	st := selfaware.NewState()
	found, err := s.ds.Decode(stateKey, st)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("self-awareness state: %w", ErrNotFound)
	}
	st.Normalize()
	return st, nil
}

// SaveState writes the record and flushes it to disk.
func (s *StateStore) SaveState(st *selfaware.State) error {
	if err := s.ds.Put(stateKey, st); err != nil {
		return err
	}
	return s.ds.Flush()
}

func (s *StateStore) Close() error {
	return s.ds.Close()
}
