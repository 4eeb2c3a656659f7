package repositories

import "context"

// Entry is one stored value together with its version stamp.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// KVStore is a flat string-keyed store with optimistic concurrency.
// Versions start at 1 and grow by one on every write to a key.
type KVStore interface {
	// Get returns apperrors.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set writes value unconditionally and returns the new version.
	Set(ctx context.Context, key string, value []byte) (int64, error)

	// CompareAndSwap writes value only if the stored version equals expectedVersion.
	// An expectedVersion of 0 means the key must not exist yet. A mismatch returns apperrors.ErrConflict.
	CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// ListByPrefix returns every entry whose key starts with prefix, ordered by key.
	ListByPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
