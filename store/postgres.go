package store

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"vecrag/types"
)

const (
	pgCreateTableQuery = `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_documents_embedding ON documents USING hnsw (embedding vector_l2_ops);
	`
	pgVersionQuery = `SELECT version()`
	pgInsertQuery  = `INSERT INTO documents (text, embedding) VALUES ($1, $2) RETURNING id`
	pgListQuery    = `SELECT id, text, created_at FROM documents ORDER BY created_at DESC`
	pgSearchQuery  = `
		SELECT id, text, embedding <-> $1 AS distance
		FROM documents
		ORDER BY distance ASC
		LIMIT $2
	`
)

// PgxPool is the subset of *pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ PgxPool = (*pgxpool.Pool)(nil)

// PostgresStore is the pgvector backend. It keeps the same table shape as
// the MariaDB store and ranks by L2 distance (<->).
type PostgresStore struct {
	pool PgxPool
	dim  int
}

// postgresConnString builds a postgres:// URL so credentials are escaped.
func postgresConnString(cfg types.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPass),
		Host:   net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:   "/" + cfg.DBName,
		RawQuery: url.Values{
			"sslmode":        {"disable"},
			"pool_max_conns": {"1"},
		}.Encode(),
	}
	return u.String()
}

func NewPostgresStore(ctx context.Context, cfg types.Config) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, postgresConnString(cfg))
	if err != nil {
		return nil, types.NewError(types.ErrConnection, "connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, types.NewError(types.ErrConnection, "connect", err)
	}

	return NewPostgresStoreFromPool(pool, cfg.VectorDim), nil
}

// NewPostgresStoreFromPool wraps an already connected pool.
func NewPostgresStoreFromPool(pool PgxPool, dim int) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		dim:  dim,
	}
}

func (p *PostgresStore) createTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(pgCreateTableQuery, p.dim))
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	if err := p.createTable(ctx); err != nil {
		return types.NewError(types.ErrSchema, "create table", err)
	}
	return nil
}

func (p *PostgresStore) Version(ctx context.Context) (string, error) {
	var version string
	if err := p.pool.QueryRow(ctx, pgVersionQuery).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to read version: %w", err)
	}
	return version, nil
}

func (p *PostgresStore) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx, pgInsertQuery, text, pgvector.NewVector(embedding)).Scan(&id)
	if err != nil {
		return 0, types.NewError(types.ErrInsert, "insert", err)
	}
	return id, nil
}

func (p *PostgresStore) List(ctx context.Context) ([]types.Document, error) {
	rows, err := p.pool.Query(ctx, pgListQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []types.Document{}
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.Text, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (p *PostgresStore) SearchSimilar(ctx context.Context, query []float32, k int) ([]types.SearchResult, error) {
	rows, err := p.pool.Query(ctx, pgSearchQuery, pgvector.NewVector(query), k)
	if err != nil {
		return nil, types.NewError(types.ErrSearch, "search", err)
	}
	defer rows.Close()

	results := []types.SearchResult{}
	for rows.Next() {
		var r types.SearchResult
		if err := rows.Scan(&r.ID, &r.Text, &r.Distance); err != nil {
			return nil, types.NewError(types.ErrSearch, "search", err)
		}
		log.Printf("[SEARCH] Found document %d (distance: %.4f)", r.ID, r.Distance)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewError(types.ErrSearch, "search", err)
	}
	return results, nil
}

// Close releases the pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
