package store

import (
	"context"
	"fmt"

	"vecrag/types"
)

// DBStorer is the document repository. Insert, List and SearchSimilar
// return recoverable errors; New and Init return fatal ones.
type DBStorer interface {
	Init(ctx context.Context) error
	Version(ctx context.Context) (string, error)
	Insert(ctx context.Context, text string, embedding []float32) (int64, error)
	List(ctx context.Context) ([]types.Document, error)
	SearchSimilar(ctx context.Context, query []float32, k int) ([]types.SearchResult, error)
	Close() error
}

var (
	_ DBStorer = (*MariaDBStore)(nil)
	_ DBStorer = (*PostgresStore)(nil)
	_ DBStorer = (*MemoryStore)(nil)
)

// New connects to the store selected by cfg.StoreDriver. The table is not
// created until Init is called.
func New(ctx context.Context, cfg types.Config) (DBStorer, error) {
	switch cfg.StoreDriver {
	case types.DriverMariaDB, "":
		s, err := NewMariaDBStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.DriverPostgres:
		s, err := NewPostgresStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.DriverMemory:
		return NewMemoryStore(cfg.VectorDim), nil
	default:
		return nil, types.NewError(types.ErrConnection, "connect", fmt.Errorf("unknown store driver: %s", cfg.StoreDriver))
	}
}
