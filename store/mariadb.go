package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"vecrag/types"
)

const (
	mariaInsertQuery = `INSERT INTO documents (text, embedding) VALUES (?, VEC_FromText(?))`
	mariaListQuery   = `SELECT id, text, created_at FROM documents ORDER BY created_at DESC`
	mariaSearchQuery = `SELECT id, text, VEC_DISTANCE(embedding, VEC_FromText(?)) AS distance
		FROM documents
		ORDER BY distance ASC
		LIMIT ?`
)

// MariaDBStore keeps documents in a MariaDB 11.8+ table with a native
// VECTOR column. Distance is computed by VEC_DISTANCE.
type MariaDBStore struct {
	db  *sql.DB
	dim int
}

func mariaDSN(cfg types.Config) string {
	c := mysql.NewConfig()
	c.User = cfg.DBUser
	c.Passwd = cfg.DBPass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	c.DBName = cfg.DBName
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

func NewMariaDBStore(ctx context.Context, cfg types.Config) (*MariaDBStore, error) {
	db, err := sql.Open("mysql", mariaDSN(cfg))
	if err != nil {
		return nil, types.NewError(types.ErrConnection, "connect", err)
	}
	// One caller at a time, so one connection is enough.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, types.NewError(types.ErrConnection, "connect", err)
	}

	return NewMariaDBStoreFromDB(db, cfg.VectorDim), nil
}

// NewMariaDBStoreFromDB wraps an already opened handle.
func NewMariaDBStoreFromDB(db *sql.DB, dim int) *MariaDBStore {
	return &MariaDBStore{
		db:  db,
		dim: dim,
	}
}

func (m *MariaDBStore) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
		id INT AUTO_INCREMENT PRIMARY KEY,
		text TEXT NOT NULL,
		embedding VECTOR(%d) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		VECTOR INDEX (embedding)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, m.dim)

	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *MariaDBStore) Init(ctx context.Context) error {
	if err := m.createTable(ctx); err != nil {
		return types.NewError(types.ErrSchema, "create table", err)
	}
	return nil
}

func (m *MariaDBStore) Version(ctx context.Context) (string, error) {
	var version string
	if err := m.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to read version: %w", err)
	}
	return version, nil
}

func (m *MariaDBStore) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	res, err := m.db.ExecContext(ctx, mariaInsertQuery, text, ToLiteral(embedding))
	if err != nil {
		return 0, types.NewError(types.ErrInsert, "insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, types.NewError(types.ErrInsert, "insert", err)
	}
	return id, nil
}

func (m *MariaDBStore) List(ctx context.Context) ([]types.Document, error) {
	rows, err := m.db.QueryContext(ctx, mariaListQuery)
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

// SearchSimilar passes k through unchecked.
func (m *MariaDBStore) SearchSimilar(ctx context.Context, query []float32, k int) ([]types.SearchResult, error) {
	rows, err := m.db.QueryContext(ctx, mariaSearchQuery, ToLiteral(query), k)
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

func (m *MariaDBStore) Close() error {
	if m.db != nil {
		log.Println("MariaDB connection is closed")
		return m.db.Close()
	}
	return nil
}
