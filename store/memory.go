package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"vecrag/types"
)

// MemoryStore is an in-process backend for running without a database.
// It enforces the configured dimension on insert, like the VECTOR(dim)
// column does, and ranks by Euclidean distance.
type MemoryStore struct {
	mu     sync.Mutex
	dim    int
	nextID int64
	docs   []types.Document
	now    func() time.Time
}

func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{
		dim:    dim,
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MemoryStore) Init(ctx context.Context) error {
	if m.dim <= 0 {
		return types.NewError(types.ErrSchema, "create table", fmt.Errorf("invalid vector dimension %d", m.dim))
	}
	return nil
}

func (m *MemoryStore) Version(ctx context.Context) (string, error) {
	return "memory", nil
}

func (m *MemoryStore) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	if len(embedding) != m.dim {
		return 0, types.NewError(types.ErrInsert, "insert",
			fmt.Errorf("vector dimension %d does not match column dimension %d", len(embedding), m.dim))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	doc := types.Document{
		ID:        m.nextID,
		Text:      text,
		Embedding: vec,
		CreatedAt: m.now(),
	}
	m.nextID++
	m.docs = append(m.docs, doc)
	return doc.ID, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]types.Document, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, types.Document{ID: d.ID, Text: d.Text, CreatedAt: d.CreatedAt})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (m *MemoryStore) SearchSimilar(ctx context.Context, query []float32, k int) ([]types.SearchResult, error) {
	if k < 0 {
		return nil, types.NewError(types.ErrSearch, "search", fmt.Errorf("invalid limit %d", k))
	}
	if len(query) != m.dim {
		return nil, types.NewError(types.ErrSearch, "search",
			fmt.Errorf("vector dimension %d does not match column dimension %d", len(query), m.dim))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]types.SearchResult, 0, len(m.docs))
	for _, d := range m.docs {
		results = append(results, types.SearchResult{
			ID:       d.ID,
			Text:     d.Text,
			Distance: euclidean(d.Embedding, query),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
