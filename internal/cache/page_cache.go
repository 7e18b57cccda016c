// Package cache holds the rendered-page cache used for the home feed.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

// Page is a rendered response kept verbatim.
type Page struct {
	Status      int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

// PageCache serves identical bytes for a key until ttl has elapsed on the
// injected clock or Invalidate is called.
type PageCache struct {
	client  *ristretto.Cache
	manager *cache.Cache[Page]
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*PageCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *PageCache) { c.now = now }
}

func NewPageCache(ttl time.Duration, opts ...Option) (*PageCache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	c := &PageCache{
		client:  client,
		manager: cache.New[Page](ristrettostore.NewRistretto(client)),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *PageCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the page stored under key if it is still inside its window.
func (c *PageCache) Get(ctx context.Context, key string) (Page, bool) {
	page, err := c.manager.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.NotFound{}) {
			log.Warn().Err(err).Str("key", key).Msg("page cache read failed")
		}
		return Page{}, false
	}
	if page.Body == nil || !c.now().Before(page.StoredAt.Add(c.ttl)) {
		return Page{}, false
	}
	return page, true
}

// Set stores page under key and blocks until it is readable.
func (c *PageCache) Set(ctx context.Context, key string, page Page) error {
	page.StoredAt = c.now()
	err := c.manager.Set(ctx, key, page,
		store.WithExpiration(c.ttl),
		store.WithCost(int64(len(page.Body))),
	)
	if err != nil {
		return err
	}
	c.client.Wait()
	return nil
}

// Invalidate drops every cached page.
func (c *PageCache) Invalidate(ctx context.Context) {
	if err := c.manager.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("page cache clear failed")
	}
}

func (c *PageCache) Close() {
	c.client.Close()
}
