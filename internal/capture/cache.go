package capture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scrypster/focusd/pkg/types"
)

// defaultCacheTTL bounds how long a cached capture may be reused.
const defaultCacheTTL = 5 * time.Minute

// CachedCapturer wraps a Capturer with a short-lived cache so that
// closely spaced callers (a manual test capture next to a scheduled
// tick) do not hit the OS twice for the same screen.
type CachedCapturer struct {
	inner Capturer
	cache *expirable.LRU[string, *types.CaptureSample]
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedCapturer wraps inner with a TTL cache. A non-positive ttl
// selects the default of five minutes.
func NewCachedCapturer(inner Capturer, ttl time.Duration) *CachedCapturer {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedCapturer{
		inner: inner,
		cache: expirable.NewLRU[string, *types.CaptureSample](4, nil, ttl),
		ttl:   ttl,
	}
}

// Capture returns the cached sample when it is still fresh, otherwise
// delegates to the wrapped capturer and caches the result. Errors are
// never cached.
func (c *CachedCapturer) Capture(ctx context.Context) (*types.CaptureSample, error) {
	if sample, ok := c.cache.Get("screen"); ok {
		c.hits.Add(1)
		return sample, nil
	}

	sample, err := c.inner.Capture(ctx)
	if err != nil {
		return nil, err
	}

	c.misses.Add(1)
	c.cache.Add("screen", sample)
	return sample, nil
}

// Invalidate drops any cached sample, forcing the next Capture to hit
// the wrapped capturer.
func (c *CachedCapturer) Invalidate() {
	c.cache.Purge()
}

// Stats returns cache hit and miss counts since creation.
func (c *CachedCapturer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
