package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a fetched image is reused.
const DefaultCacheTTL = 10 * time.Minute

// DefaultCacheEntries bounds the number of cached bodies.
const DefaultCacheEntries = 256

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL   time.Duration
	MaxEntries int
	Options    *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:   DefaultCacheTTL,
		MaxEntries: DefaultCacheEntries,
		Options:    DefaultOptions(),
	}
}

type cacheEntry struct {
	result  *Result
	expires time.Time
}

// CachedFetcher fetches images with an in-memory TTL cache. Concurrent requests
// for the same URL share one download. Failures are not cached.
type CachedFetcher struct {
	options    *Options
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCachedFetcher creates a new cached fetcher. A nil config uses the defaults.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	f := &CachedFetcher{
		options:    config.Options,
		ttl:        config.CacheTTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
	if f.options == nil {
		f.options = DefaultOptions()
	}
	if f.ttl <= 0 {
		f.ttl = DefaultCacheTTL
	}
	if f.maxEntries <= 0 {
		f.maxEntries = DefaultCacheEntries
	}
	return f
}

// Fetch returns the image at urlStr, from cache when fresh.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	if r, ok := f.lookup(urlStr); ok {
		return r, nil
	}

	v, err, _ := f.group.Do(urlStr, func() (any, error) {
		if r, ok := f.lookup(urlStr); ok {
			return r, nil
		}
		r, err := Image(ctx, urlStr, f.options)
		if err != nil {
			return nil, err
		}
		f.store(urlStr, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// FetchImage returns the image bytes at urlStr.
func (f *CachedFetcher) FetchImage(ctx context.Context, urlStr string) ([]byte, error) {
	r, err := f.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	return r.Body, nil
}

// Invalidate drops a cached URL, forcing a re-fetch on next request.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, urlStr)
}

// Len returns the number of cached entries, including expired ones not yet evicted.
func (f *CachedFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *CachedFetcher) lookup(urlStr string) (*Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[urlStr]
	if !ok {
		return nil, false
	}
	if !f.now().Before(e.expires) {
		delete(f.entries, urlStr)
		return nil, false
	}
	return e.result, true
}

func (f *CachedFetcher) store(urlStr string, r *Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if len(f.entries) >= f.maxEntries {
		f.evictLocked(now)
	}
	f.entries[urlStr] = cacheEntry{result: r, expires: now.Add(f.ttl)}
}

// evictLocked drops expired entries, then the entry closest to expiry if still full.
func (f *CachedFetcher) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for key, e := range f.entries {
		if !now.Before(e.expires) {
			delete(f.entries, key)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = key, e.expires
		}
	}
	if len(f.entries) >= f.maxEntries && oldestKey != "" {
		delete(f.entries, oldestKey)
	}
}
