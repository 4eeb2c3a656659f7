// Package memory provides an in-process KVStore for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
)

type KVStore struct {
	mu      sync.RWMutex
	entries map[string]portsrepo.Entry
}

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string]portsrepo.Entry)}
}

var _ portsrepo.KVStore = (*KVStore)(nil)

func (s *KVStore) Get(_ context.Context, key string) (*portsrepo.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e.Value = cloneBytes(e.Value)
	return &e, nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.entries[key].Version + 1
	s.entries[key] = portsrepo.Entry{Key: key, Value: cloneBytes(value), Version: version}
	return version, nil
}

func (s *KVStore) CompareAndSwap(_ context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[key]
	switch {
	case expectedVersion == 0 && exists:
		return 0, apperrors.ErrConflict
	case expectedVersion != 0 && (!exists || current.Version != expectedVersion):
		return 0, apperrors.ErrConflict
	}

	version := expectedVersion + 1
	s.entries[key] = portsrepo.Entry{Key: key, Value: cloneBytes(value), Version: version}
	return version, nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *KVStore) ListByPrefix(_ context.Context, prefix string) ([]portsrepo.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []portsrepo.Entry
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			e.Value = cloneBytes(e.Value)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
