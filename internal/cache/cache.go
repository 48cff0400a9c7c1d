// Package cache provides the snapshot cache for loaded building models.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Open creates the client selected by cfg.Driver.
func Open(cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryClient(cfg.MaxEntries), nil
	case "redis":
		return NewRedisClient(RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}

// CacheKey generates a cache key from components.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// SnapshotKey is the key of the snapshot built from a model fingerprint with
// the given number of plastered wall faces.
func SnapshotKey(fingerprint string, faces int) string {
	return CacheKey("snapshot", "f"+strconv.Itoa(faces), fingerprint)
}

// SnapshotCache stores aggregate snapshots keyed by model fingerprint and
// plastering faces.
type SnapshotCache struct {
	client Client
	ttl    time.Duration
}

// NewSnapshotCache wraps client. A non-positive ttl keeps entries for an hour.
func NewSnapshotCache(client Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the snapshot cached for fingerprint and faces or ErrCacheMiss.
func (c *SnapshotCache) Get(ctx context.Context, fingerprint string, faces int) (*aggregate.Snapshot, error) {
	data, err := c.client.Get(ctx, SnapshotKey(fingerprint, faces))
	if err != nil {
		return nil, err
	}
	snap, err := aggregate.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

// Put stores snap under its own fingerprint and plastering faces.
func (c *SnapshotCache) Put(ctx context.Context, snap *aggregate.Snapshot) error {
	data, err := snap.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, SnapshotKey(snap.Fingerprint(), snap.Plastering().Faces), data, c.ttl)
}

// Invalidate drops every cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.DeleteByPrefix(ctx, CacheKey("snapshot", ""))
}
