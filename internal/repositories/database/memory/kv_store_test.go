package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetMissing(t *testing.T) {
	store := memory.NewKVStore()
	_, err := store.Get(context.Background(), "client:none")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKVStore_SetBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()

	v1, err := store.Set(ctx, "k", []byte(`1`))
	require.NoError(t, err)
	v2, err := store.Set(ctx, "k", []byte(`2`))
	require.NoError(t, err)

	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(2), v2)

	e, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`2`), e.Value)
	assert.Equal(t, int64(2), e.Version)
}

func TestKVStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()

	v, err := store.CompareAndSwap(ctx, "k", []byte(`a`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = store.CompareAndSwap(ctx, "k", []byte(`b`), 0)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "create must fail when the key exists")

	_, err = store.CompareAndSwap(ctx, "k", []byte(`b`), 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	v, err = store.CompareAndSwap(ctx, "k", []byte(`b`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = store.CompareAndSwap(ctx, "missing", []byte(`x`), 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestKVStore_ConcurrentCASHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	_, err := store.Set(ctx, "k", []byte(`0`))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.CompareAndSwap(ctx, "k", []byte(`1`), 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestKVStore_ListByPrefixSorted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	for _, k := range []string{"user:b", "user-permissions:a", "user:a", "client:a"} {
		_, err := store.Set(ctx, k, []byte(`{}`))
		require.NoError(t, err)
	}

	entries, err := store.ListByPrefix(ctx, "user:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user:a", entries[0].Key)
	assert.Equal(t, "user:b", entries[1].Key)

	require.NoError(t, store.Delete(ctx, "user:a"))
	require.NoError(t, store.Delete(ctx, "user:a"))
	entries, err = store.ListByPrefix(ctx, "user:")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestKVStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	value := []byte(`abc`)
	_, err := store.Set(ctx, "k", value)
	require.NoError(t, err)
	value[0] = 'z'

	e, err := store.Get(ctx, "k")
	require.NoError(t, err)
	e.Value[1] = 'z'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`abc`), again.Value)
}
