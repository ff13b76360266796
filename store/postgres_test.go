package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrag/types"
)

func setupTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStoreFromPool(mock, 768), mock
}

func TestPostgresStore_Init(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectExec(fmt.Sprintf(pgCreateTableQuery, 768)).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	require.NoError(t, store.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Init_NoExtension(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectExec(fmt.Sprintf(pgCreateTableQuery, 768)).
		WillReturnError(errors.New(`extension "vector" is not available`))

	err := store.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchema)
	assert.True(t, types.IsFatal(err))
}

func TestPostgresStore_Version(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgVersionQuery).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow("PostgreSQL 17.2"))

	version, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 17.2", version)
}

func TestPostgresStore_Insert(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgInsertQuery).
		WithArgs("pgvector adds a vector type", pgvector.NewVector([]float32{1, 2.5, -3})).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.Insert(context.Background(), "pgvector adds a vector type", []float32{1, 2.5, -3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Insert_Rejected(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgInsertQuery).
		WithArgs("short", pgvector.NewVector([]float32{1})).
		WillReturnError(errors.New("expected 768 dimensions, not 1"))

	id, err := store.Insert(context.Background(), "short", []float32{1})
	require.Error(t, err)
	assert.Zero(t, id)
	assert.ErrorIs(t, err, types.ErrInsert)
	assert.False(t, types.IsFatal(err))
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(pgListQuery).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "created_at"}).
			AddRow(int64(2), "second", created.Add(time.Minute)).
			AddRow(int64(1), "first", created))

	docs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(2), docs[0].ID)
	assert.Equal(t, "first", docs[1].Text)
	assert.Equal(t, created, docs[1].CreatedAt)
}

func TestPostgresStore_List_Empty(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgListQuery).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "created_at"}))

	docs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestPostgresStore_SearchSimilar(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgSearchQuery).
		WithArgs(pgvector.NewVector([]float32{0.5, 0.5}), 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "distance"}).
			AddRow(int64(2), "MariaDB is open source", 0.1).
			AddRow(int64(3), "Vector databases", 0.4))

	results, err := store.SearchSimilar(context.Background(), []float32{0.5, 0.5}, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].ID)
	assert.InDelta(t, 0.4, results[1].Distance, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchSimilar_EmptyTable(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgSearchQuery).
		WithArgs(pgvector.NewVector([]float32{1, 0}), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "distance"}))

	results, err := store.SearchSimilar(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestPostgresStore_SearchSimilar_Error(t *testing.T) {
	store, mock := setupTestPostgresStore(t)
	mock.ExpectQuery(pgSearchQuery).
		WithArgs(pgvector.NewVector([]float32{1}), 2).
		WillReturnError(errors.New("different vector dimensions 768 and 1"))

	results, err := store.SearchSimilar(context.Background(), []float32{1}, 2)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, types.ErrSearch)
}

func TestPostgresConnString(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.StoreDriver = types.DriverPostgres
	cfg.DBHost = "db.internal"
	cfg.DBPort = 5433
	cfg.DBName = "rag"
	cfg.DBUser = "app user"
	cfg.DBPass = "p@ss w'rd/?#"

	poolCfg, err := pgxpool.ParseConfig(postgresConnString(cfg))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolCfg.ConnConfig.Port)
	assert.Equal(t, "rag", poolCfg.ConnConfig.Database)
	assert.Equal(t, "app user", poolCfg.ConnConfig.User)
	assert.Equal(t, "p@ss w'rd/?#", poolCfg.ConnConfig.Password)
	assert.Nil(t, poolCfg.ConnConfig.TLSConfig)
	assert.Equal(t, int32(1), poolCfg.MaxConns)
}
