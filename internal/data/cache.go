package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/jonboulle/clockwork"
)

// CacheEntry represents a cached history response.
type CacheEntry struct {
	History   *model.PriceHistory
	ExpiresAt time.Time
}

// HistoryCache is an in-memory TTL cache for provider responses.
//
// Intended for local development: re-submitting the same tickers and range
// does not hit the provider again. It is never enabled when API_ENV=production.
type HistoryCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	clock clockwork.Clock

	stop     chan struct{}
	stopOnce sync.Once
}

// NewHistoryCache creates a cache and starts its cleanup goroutine. Call
// Close to stop it.
func NewHistoryCache(ttl time.Duration, clock clockwork.Clock) *HistoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &HistoryCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		clock: clock,
		stop:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Get retrieves a cached history if available and not expired.
func (c *HistoryCache) Get(key string) (*model.PriceHistory, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}
	if c.clock.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.History, true
}

// Set stores a history in the cache.
func (c *HistoryCache) Set(key string, h *model.PriceHistory) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = &CacheEntry{History: h, ExpiresAt: c.clock.Now().Add(c.ttl)}
}

// Len returns the number of stored entries, expired or not.
func (c *HistoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache.
func (c *HistoryCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*CacheEntry)
}

// Close stops the cleanup goroutine.
func (c *HistoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries.
func (c *HistoryCache) cleanup(every time.Duration) {
	ticker := c.clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.Chan():
			c.evictExpired()
		}
	}
}

func (c *HistoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

// GenerateCacheKey creates a cache key from query parameters.
func GenerateCacheKey(provider string, q HistoryQuery) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s",
		provider,
		q.Symbol,
		q.Start.Format("2006-01-02"),
		q.End.Format("2006-01-02"),
	)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

// CachedProvider wraps a HistoryProvider with a HistoryCache.
type CachedProvider struct {
	inner   HistoryProvider
	cache   *HistoryCache
	metrics *observability.Metrics
}

func NewCachedProvider(inner HistoryProvider, cache *HistoryCache, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, metrics: metrics}
}

func (p *CachedProvider) Name() string { return p.inner.Name() }

func (p *CachedProvider) History(ctx context.Context, q HistoryQuery) (*model.PriceHistory, error) {
	key := GenerateCacheKey(p.inner.Name(), q)
	if h, ok := p.cache.Get(key); ok {
		p.count("hit")
		return h, nil
	}
	p.count("miss")
	h, err := p.inner.History(ctx, q)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, h)
	return h, nil
}

func (p *CachedProvider) count(result string) {
	if p.metrics != nil {
		p.metrics.HistoryCache.WithLabelValues(result).Inc()
	}
}
