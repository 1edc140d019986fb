package kv

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockSQLite(t *testing.T) (*SQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLite(context.Background(), db)
	require.NoError(t, err)
	return s, mock
}

func TestSQLiteMigrationFailure(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("disk I/O error"))
	_, err = NewSQLite(context.Background(), db)
	require.ErrorContains(t, err, "migrate sqlite")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRejectsNilHandle(t *testing.T) {
	t.Parallel()
	_, err := NewSQLite(context.Background(), nil)
	require.Error(t, err)
}

func TestSQLiteGetWrapsQueryErrors(t *testing.T) {
	t.Parallel()
	s, mock := newMockSQLite(t)
	boom := errors.New("database is locked")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv WHERE key = ?")).
		WithArgs("manaklal_reviews_v1").
		WillReturnError(boom)

	_, ok, err := s.Get(context.Background(), "manaklal_reviews_v1")
	require.False(t, ok)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSetUpserts(t *testing.T) {
	t.Parallel()
	s, mock := newMockSQLite(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)")).
		WithArgs("k", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "k", "[]"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRemoveWrapsExecErrors(t *testing.T) {
	t.Parallel()
	s, mock := newMockSQLite(t)
	boom := errors.New("readonly database")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv WHERE key = ?")).
		WithArgs("k").
		WillReturnError(boom)

	err := s.Remove(context.Background(), "k")
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "sqlite remove k")
	require.NoError(t, mock.ExpectationsWereMet())
}
