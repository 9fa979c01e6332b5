package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/config"
	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardKeyPrefix = "dashboard:doc:"
	scanBatchSize      = 100
)

// DashboardCache is a read-through copy of persisted dashboard documents.
// It is never the source of truth; writers update it after a successful save.
type DashboardCache interface {
	Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, d *domain.Dashboard) error
	Invalidate(ctx context.Context, role domain.Role, ownerID string) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache returns a redis-backed cache when caching is enabled and
// a no-op cache otherwise.
func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisDashboardCache(client, ttl), nil
}

// NewRedisDashboardCache wraps an existing client.
func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	return &redisDashboardCache{client: client, ttl: ttlOrDefault(ttl)}
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, bool, error) {
	payload, err := c.client.Get(ctx, buildDashboardKey(role, ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var d domain.Dashboard
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}

	return &d, true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, d *domain.Dashboard) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, buildDashboardKey(d.Role, d.OwnerID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisDashboardCache) Invalidate(ctx context.Context, role domain.Role, ownerID string) error {
	if err := c.client.Del(ctx, buildDashboardKey(role, ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return unlinkByPrefix(ctx, c.client, dashboardKeyPrefix, scanBatchSize)
}

func (n *noopDashboardCache) Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) Set(ctx context.Context, d *domain.Dashboard) error {
	return nil
}

func (n *noopDashboardCache) Invalidate(ctx context.Context, role domain.Role, ownerID string) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildDashboardKey(role domain.Role, ownerID string) string {
	return dashboardKeyPrefix + domain.DashboardKey(role, ownerID)
}
