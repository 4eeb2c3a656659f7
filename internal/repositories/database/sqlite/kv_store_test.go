package sqlite_test

import (
	"context"
	"testing"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/repositories/database/sqlite"
	"github.com/SscSPs/tax_filing_app/pkg/database"
	"github.com/stretchr/testify/suite"
)

type KVStoreTestSuite struct {
	suite.Suite
	store *sqlite.GormKVStore
	ctx   context.Context
}

func (s *KVStoreTestSuite) SetupTest() {
	db, err := database.NewSQLiteDB(":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { database.CloseSQLiteDB(db) })

	s.store, err = sqlite.NewKVStore(db)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func TestKVStoreTestSuite(t *testing.T) {
	suite.Run(t, new(KVStoreTestSuite))
}

func (s *KVStoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "client:none")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *KVStoreTestSuite) TestSetAndGet() {
	v, err := s.store.Set(s.ctx, "user:1", []byte(`{"id":"1"}`))
	s.Require().NoError(err)
	s.Equal(int64(1), v)

	v, err = s.store.Set(s.ctx, "user:1", []byte(`{"id":"1","name":"A"}`))
	s.Require().NoError(err)
	s.Equal(int64(2), v)

	e, err := s.store.Get(s.ctx, "user:1")
	s.Require().NoError(err)
	s.Equal(int64(2), e.Version)
	s.JSONEq(`{"id":"1","name":"A"}`, string(e.Value))
}

func (s *KVStoreTestSuite) TestCompareAndSwap() {
	v, err := s.store.CompareAndSwap(s.ctx, "k", []byte(`1`), 0)
	s.Require().NoError(err)
	s.Equal(int64(1), v)

	_, err = s.store.CompareAndSwap(s.ctx, "k", []byte(`2`), 0)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.store.CompareAndSwap(s.ctx, "k", []byte(`2`), 5)
	s.ErrorIs(err, apperrors.ErrConflict)

	v, err = s.store.CompareAndSwap(s.ctx, "k", []byte(`2`), 1)
	s.Require().NoError(err)
	s.Equal(int64(2), v)

	e, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal([]byte(`2`), e.Value)
}

func (s *KVStoreTestSuite) TestListByPrefixAndDelete() {
	for _, k := range []string{"message:b", "message:a", "messages:x", "client:a"} {
		_, err := s.store.Set(s.ctx, k, []byte(`{}`))
		s.Require().NoError(err)
	}

	entries, err := s.store.ListByPrefix(s.ctx, "message:")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("message:a", entries[0].Key)
	s.Equal("message:b", entries[1].Key)

	s.Require().NoError(s.store.Delete(s.ctx, "message:a"))
	s.Require().NoError(s.store.Delete(s.ctx, "message:a"))

	entries, err = s.store.ListByPrefix(s.ctx, "message:")
	s.Require().NoError(err)
	s.Len(entries, 1)
}
