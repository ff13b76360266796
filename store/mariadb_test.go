package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrag/types"
)

func setupTestMariaDBStore(t *testing.T) (*MariaDBStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMariaDBStoreFromDB(db, 768), mock
}

func TestMariaDBStore_Init(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents \(.*embedding VECTOR\(768\) NOT NULL.*VECTOR INDEX \(embedding\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewMariaDBStoreFromDB(db, 768)
	require.NoError(t, store.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaDBStore_Init_NoVectorSupport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents`).
		WillReturnError(errors.New("You have an error in your SQL syntax near 'VECTOR(768)'"))

	store := NewMariaDBStoreFromDB(db, 768)
	err = store.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchema)
	assert.True(t, types.IsFatal(err))
}

func TestMariaDBStore_Version(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectQuery("SELECT VERSION()").
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("11.8.2-MariaDB"))

	version, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "11.8.2-MariaDB", version)
}

func TestMariaDBStore_Insert(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectExec(mariaInsertQuery).
		WithArgs("MariaDB is open source", "[1,2.5,-3]").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := store.Insert(context.Background(), "MariaDB is open source", []float32{1, 2.5, -3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaDBStore_Insert_Rejected(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectExec(mariaInsertQuery).
		WithArgs("short", "[1]").
		WillReturnError(errors.New("Vector length mismatch"))

	id, err := store.Insert(context.Background(), "short", []float32{1})
	require.Error(t, err)
	assert.Zero(t, id)
	assert.ErrorIs(t, err, types.ErrInsert)
	assert.False(t, types.IsFatal(err))
}

func TestMariaDBStore_List(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	now := time.Now()
	mock.ExpectQuery(mariaListQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_at"}).
			AddRow(2, "second", now).
			AddRow(1, "first", now.Add(-time.Second)))

	docs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(2), docs[0].ID)
	assert.Equal(t, "second", docs[0].Text)
	assert.True(t, docs[0].CreatedAt.Equal(now))
	assert.Nil(t, docs[0].Embedding)
}

func TestMariaDBStore_List_Empty(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectQuery(mariaListQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_at"}))

	docs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestMariaDBStore_SearchSimilar(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectQuery(mariaSearchQuery).
		WithArgs("[0.5,0.5]", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "distance"}).
			AddRow(2, "MariaDB", 0.1).
			AddRow(3, "vectors", 0.4))

	results, err := store.SearchSimilar(context.Background(), []float32{0.5, 0.5}, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.SearchResult{ID: 2, Text: "MariaDB", Distance: 0.1}, results[0])
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestMariaDBStore_SearchSimilar_EmptyTable(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectQuery(mariaSearchQuery).
		WithArgs("[1]", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "distance"}))

	results, err := store.SearchSimilar(context.Background(), []float32{1}, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMariaDBStore_SearchSimilar_PassesKThrough(t *testing.T) {
	store, mock := setupTestMariaDBStore(t)
	mock.ExpectQuery(mariaSearchQuery).
		WithArgs("[1]", -1).
		WillReturnError(errors.New("Undeclared variable"))

	_, err := store.SearchSimilar(context.Background(), []float32{1}, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSearch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaDSN(t *testing.T) {
	cfg := types.DefaultConfig()
	dsn := mariaDSN(cfg)
	assert.Contains(t, dsn, "root:root@tcp(localhost:3306)/demo_db")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
