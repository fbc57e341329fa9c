package repoclient

import (
	"context"
	"io"
	"time"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
	"github.com/redis/go-redis/v9"
)

const existsKeyPrefix = "depositor:exists:"

// ExistenceCache is the subset of the Redis API the decorator uses.
// Satisfied by *redis.Client.
type ExistenceCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedClient decorates a Client with a Redis cache of positive existence
// results. Safe because created is monotonic: an object that exists never
// stops existing from this system's point of view. Negative results are
// never cached.
type CachedClient struct {
	inner Client
	redis ExistenceCache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedClient wraps a client with the existence cache
func NewCachedClient(inner Client, redisClient ExistenceCache, ttl time.Duration, log *logger.Logger) *CachedClient {
	return &CachedClient{
		inner: inner,
		redis: redisClient,
		ttl:   ttl,
		log:   log,
	}
}

// Ping validates the session against the node
func (c *CachedClient) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// ObjectExists checks the cache before asking the node
func (c *CachedClient) ObjectExists(ctx context.Context, pid string) (bool, error) {
	val, err := c.redis.Get(ctx, existsKeyPrefix+pid).Result()
	if err == nil && val == "1" {
		c.log.Debug("existence cache hit", "pid", pid)
		return true, nil
	}
	if err != nil && err != redis.Nil {
		// Cache trouble is not a reason to fail the call
		c.log.Warn("existence cache read failed", "pid", pid, "error", err)
	}

	exists, err := c.inner.ObjectExists(ctx, pid)
	if err != nil {
		return false, err
	}
	if exists {
		c.remember(ctx, pid)
	}
	return exists, nil
}

// CreateObject delegates and remembers the new object
func (c *CachedClient) CreateObject(ctx context.Context, pid string, desc *models.Descriptor, body io.Reader) (string, error) {
	confirmed, err := c.inner.CreateObject(ctx, pid, desc, body)
	if err != nil {
		return "", err
	}
	c.remember(ctx, confirmed)
	return confirmed, nil
}

// UpdateObject delegates and remembers the new object
func (c *CachedClient) UpdateObject(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, body io.Reader) (string, error) {
	confirmed, err := c.inner.UpdateObject(ctx, oldPID, newPID, desc, body)
	if err != nil {
		return "", err
	}
	c.remember(ctx, confirmed)
	return confirmed, nil
}

// MintIdentifier delegates to the wrapped client
func (c *CachedClient) MintIdentifier(ctx context.Context, scheme string) (string, error) {
	return c.inner.MintIdentifier(ctx, scheme)
}

func (c *CachedClient) remember(ctx context.Context, pid string) {
	if err := c.redis.Set(ctx, existsKeyPrefix+pid, "1", c.ttl).Err(); err != nil {
		c.log.Warn("existence cache write failed", "pid", pid, "error", err)
	}
}
