package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"vecrag/model"
)

const keyPrefix = "vecrag:embedding:"

var _ model.EmbedderInterface = (*EmbeddingCache)(nil)

// EmbeddingCache stores embeddings in Redis keyed by model and text hash.
// Redis failures are logged and the wrapped embedder is used instead.
type EmbeddingCache struct {
	client *redis.Client
	next   model.EmbedderInterface
	ttl    time.Duration
}

func NewEmbeddingCache(client *redis.Client, next model.EmbedderInterface, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *EmbeddingCache) Model() string {
	return c.next.Model()
}

func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		log.Printf("[CACHE] Dropping unreadable entry %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("[CACHE] Redis get failed: %v", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("[CACHE] Redis set failed: %v", err)
		}
	}
	return vec, nil
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + c.next.Model() + ":" + hex.EncodeToString(sum[:])
}
