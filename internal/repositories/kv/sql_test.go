package kv

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	b, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "kv.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	s, ok := b.(*SQLStore)
	require.True(t, ok)
	return s
}

func TestSQLite_SetAndGet(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestSQLite_GetAbsentReturnsNilNil(t *testing.T) {
	r := openSQLite(t)

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLite_SetUpserts(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSQLite_DeleteIsIdempotent(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestSQLite_InTxCommits(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "old", []byte("v")))

	err := r.InTx(ctx, func(ctx context.Context, s Store) error {
		if err := s.Set(ctx, "new", []byte("v")); err != nil {
			return err
		}
		return s.Delete(ctx, "old")
	})
	require.NoError(t, err)

	v, err := r.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	v, err = r.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLite_InTxRollsBackOnError(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.InTx(ctx, func(ctx context.Context, s Store) error {
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLite_ErrorsWrapped(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorIs(t, err, common.ErrStorage)
	require.Contains(t, err.Error(), "failed to get kv[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorIs(t, err, common.ErrStorage)
	require.Contains(t, err.Error(), "failed to set kv[k]")

	err = r.Delete(ctx, "k")
	require.ErrorIs(t, err, common.ErrStorage)
	require.Contains(t, err.Error(), "failed to delete kv[k]")
}

func newPostgresWithMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStore(db), mock, db
}

const (
	pgGet    = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s*$`
	pgSet    = `(?s)^\s*INSERT\s+INTO\s+kv\s*\(key,\s*value\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT.*$`
	pgDelete = `(?s)^DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s*$`
)

func TestPostgres_Get(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgGet).WithArgs("user_a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{}`)))

	v, err := r.Get(context.Background(), "user_a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetNoRows(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgGet).WithArgs("k").WillReturnError(sql.ErrNoRows)

	v, err := r.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPostgres_GetDBError(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgGet).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := r.Get(context.Background(), "k")
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgres_SetAndDelete(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgSet).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pgDelete).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetDBError(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgSet).WillReturnError(errors.New("constraint"))

	err := r.Set(context.Background(), "k", []byte("v"))
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "failed to set kv[k]")
}

func TestPostgres_InTxCommit(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgSet).WithArgs("user_b", []byte("rec")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pgDelete).WithArgs("user_a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.InTx(context.Background(), func(ctx context.Context, s Store) error {
		if err := s.Set(ctx, "user_b", []byte("rec")); err != nil {
			return err
		}
		return s.Delete(ctx, "user_a")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InTxRollback(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgSet).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := r.InTx(context.Background(), func(ctx context.Context, s Store) error {
		return s.Set(ctx, "k", []byte("v"))
	})
	require.ErrorIs(t, err, common.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InTxBeginError(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	called := false
	err := r.InTx(context.Background(), func(ctx context.Context, s Store) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, common.ErrStorage)
	assert.False(t, called)
}

func TestPostgres_InTxRollsBackOnPanic(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = r.InTx(context.Background(), func(ctx context.Context, s Store) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_NestedInTxReusesTransaction(t *testing.T) {
	r, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgDelete).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.InTx(context.Background(), func(ctx context.Context, s Store) error {
		return s.(Transactor).InTx(ctx, func(ctx context.Context, inner Store) error {
			return inner.Delete(ctx, "k")
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
