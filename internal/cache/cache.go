// Package cache memoizes geocoded coordinates keyed by normalized address.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/holitrip/internal/models"
)

type Cache interface {
	Get(ctx context.Context, address string) (models.Coordinates, bool)
	Set(ctx context.Context, address string, coords models.Coordinates) error
	Close() error
}

// NormalizeAddress lowercases and collapses whitespace so that spellings of
// the same address share one entry.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      24 * time.Hour,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, address string) (models.Coordinates, bool) {
	data, err := c.client.Get(ctx, generateKey(address)).Bytes()
	if err != nil {
		return models.Coordinates{}, false
	}

	var coords models.Coordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return models.Coordinates{}, false
	}

	return coords, true
}

func (c *RedisCache) Set(ctx context.Context, address string, coords models.Coordinates) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(address), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is an in-process memo safe for concurrent searches.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.Coordinates
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]models.Coordinates)}
}

func (c *MemoryCache) Get(_ context.Context, address string) (models.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coords, ok := c.entries[NormalizeAddress(address)]
	return coords, ok
}

func (c *MemoryCache) Set(_ context.Context, address string, coords models.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[NormalizeAddress(address)] = coords
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}

// Tiered reads through its layers in order and back-fills the faster ones
// on a hit further down. Writes go to every layer.
type Tiered struct {
	layers []Cache
}

func NewTiered(layers ...Cache) *Tiered {
	return &Tiered{layers: layers}
}

func (t *Tiered) Get(ctx context.Context, address string) (models.Coordinates, bool) {
	for i, layer := range t.layers {
		coords, ok := layer.Get(ctx, address)
		if !ok {
			continue
		}
		for _, faster := range t.layers[:i] {
			_ = faster.Set(ctx, address, coords)
		}
		return coords, true
	}
	return models.Coordinates{}, false
}

func (t *Tiered) Set(ctx context.Context, address string, coords models.Coordinates) error {
	var firstErr error
	for _, layer := range t.layers {
		if err := layer.Set(ctx, address, coords); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tiered) Close() error {
	var firstErr error
	for _, layer := range t.layers {
		if err := layer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, address string) (models.Coordinates, bool) {
	return models.Coordinates{}, false
}

func (c *NoOpCache) Set(ctx context.Context, address string, coords models.Coordinates) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func generateKey(address string) string {
	hash := sha256.Sum256([]byte(NormalizeAddress(address)))
	return "geocode:" + hex.EncodeToString(hash[:])
}
