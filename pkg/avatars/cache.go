package avatars

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/teamboard/pkg/observability"
)

const cacheName = "avatars"

// CachedStore keeps recently read avatars in an expiring LRU in front of another
// Store. Writes go through and evict the entry once they complete.
type CachedStore struct {
	next    Store
	cache   *lru.LRU[string, *Avatar]
	metrics *observability.Metrics
}

// NewCachedStore wraps next with a cache of size entries living ttl
func NewCachedStore(next Store, size int, ttl time.Duration, metrics *observability.Metrics) *CachedStore {
	if size <= 0 {
		size = 256
	}
	return &CachedStore{
		next:    next,
		cache:   lru.NewLRU[string, *Avatar](size, nil, ttl),
		metrics: metrics,
	}
}

// Get serves from cache when possible
func (c *CachedStore) Get(ctx context.Context, nip string) (*Avatar, error) {
	if avatar, ok := c.cache.Get(nip); ok {
		c.metrics.RecordCacheLookup(cacheName, true)
		cp := *avatar
		return &cp, nil
	}
	c.metrics.RecordCacheLookup(cacheName, false)

	avatar, err := c.next.Get(ctx, nip)
	if err != nil {
		return nil, err
	}
	cp := *avatar
	c.cache.Add(nip, &cp)
	return avatar, nil
}

func (c *CachedStore) Create(ctx context.Context, avatar *Avatar) error {
	defer c.evict(avatar.UserNIP)
	return c.next.Create(ctx, avatar)
}

func (c *CachedStore) Replace(ctx context.Context, avatar *Avatar) error {
	defer c.evict(avatar.UserNIP)
	return c.next.Replace(ctx, avatar)
}

func (c *CachedStore) Delete(ctx context.Context, nip string) error {
	defer c.evict(nip)
	return c.next.Delete(ctx, nip)
}

// evict runs once the backing write has finished, so a Get that raced the
// write cannot leave the old avatar cached.
func (c *CachedStore) evict(nip string) {
	c.cache.Remove(nip)
}

// Len returns the number of cached avatars
func (c *CachedStore) Len() int {
	return c.cache.Len()
}
