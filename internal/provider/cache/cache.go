package cache

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cryptohub/internal/provider"
)

// entry stores the quotes fetched for one limit with expiry.
type entry struct {
	expiresAt time.Time
	quotes    []provider.Quote
}

// Provider caches FetchTop results per limit for a TTL and coalesces
// concurrent misses into a single upstream call. Errors are never cached.
type Provider struct {
	P   provider.Provider
	TTL time.Duration

	mu    sync.RWMutex
	items map[int]entry // key: limit

	sf singleflight.Group
}

func (c *Provider) Name() string { return c.P.Name() }

// FetchTop returns cached quotes while they are fresh. Callers receive their
// own copy of the slice.
func (c *Provider) FetchTop(ctx context.Context, limit int) ([]provider.Quote, error) {
	if c.TTL <= 0 {
		return c.P.FetchTop(ctx, limit)
	}

	c.mu.RLock()
	e, ok := c.items[limit]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return slices.Clone(e.quotes), nil
	}

	v, err, _ := c.sf.Do(strconv.Itoa(limit), func() (any, error) {
		// another caller may have filled the entry since the read above
		c.mu.RLock()
		e, ok := c.items[limit]
		c.mu.RUnlock()
		if ok && time.Now().Before(e.expiresAt) {
			return e.quotes, nil
		}

		qs, err := c.P.FetchTop(ctx, limit)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.items == nil {
			c.items = make(map[int]entry)
		}
		c.items[limit] = entry{expiresAt: time.Now().Add(c.TTL), quotes: qs}
		c.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]provider.Quote)), nil
}
