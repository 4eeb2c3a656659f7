package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxKVStore keeps entries in the kv_entries table created by the migrations.
type PgxKVStore struct {
	BaseRepository
}

// NewKVStore returns a KVStore backed by the pool.
func NewKVStore(pool *pgxpool.Pool) *PgxKVStore {
	return &PgxKVStore{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxKVStore implements portsrepo.KVStore
var _ portsrepo.KVStore = (*PgxKVStore)(nil)

func (s *PgxKVStore) Get(ctx context.Context, key string) (*portsrepo.Entry, error) {
	query := `SELECT value, version FROM kv_entries WHERE store_key = $1;`

	entry := portsrepo.Entry{Key: key}
	err := s.Pool.QueryRow(ctx, query, key).Scan(&entry.Value, &entry.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, s.wrapErr("get", key, err)
	}
	return &entry, nil
}

func (s *PgxKVStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	query := `
		INSERT INTO kv_entries (store_key, value, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (store_key) DO UPDATE SET
			value = EXCLUDED.value,
			version = kv_entries.version + 1,
			updated_at = now()
		RETURNING version;
	`
	var version int64
	if err := s.Pool.QueryRow(ctx, query, key, value).Scan(&version); err != nil {
		return 0, s.wrapErr("set", key, err)
	}
	return version, nil
}

func (s *PgxKVStore) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	var (
		query string
		args  []any
	)
	if expectedVersion == 0 {
		query = `
			INSERT INTO kv_entries (store_key, value, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (store_key) DO NOTHING
			RETURNING version;
		`
		args = []any{key, value}
	} else {
		query = `
			UPDATE kv_entries
			SET value = $2, version = version + 1, updated_at = now()
			WHERE store_key = $1 AND version = $3
			RETURNING version;
		`
		args = []any{key, value, expectedVersion}
	}

	var version int64
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrConflict
		}
		return 0, s.wrapErr("compare-and-swap", key, err)
	}
	return version, nil
}

func (s *PgxKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.Pool.Exec(ctx, `DELETE FROM kv_entries WHERE store_key = $1;`, key); err != nil {
		return s.wrapErr("delete", key, err)
	}
	return nil
}

func (s *PgxKVStore) ListByPrefix(ctx context.Context, prefix string) ([]portsrepo.Entry, error) {
	query := `
		SELECT store_key, value, version
		FROM kv_entries
		WHERE starts_with(store_key, $1)
		ORDER BY store_key;
	`
	rows, err := s.Pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, s.wrapErr("list", prefix, err)
	}
	defer rows.Close()

	var entries []portsrepo.Entry
	for rows.Next() {
		var e portsrepo.Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Version); err != nil {
			return nil, s.wrapErr("scan", prefix, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("list", prefix, err)
	}
	return entries, nil
}
