package faces

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const loadKey = "detector"

// Cache lazily loads a Detector once and shares it for the process lifetime.
// Concurrent first calls converge on one in-flight load; failed loads are not cached.
type Cache struct {
	load  Loader
	group singleflight.Group

	mu         sync.RWMutex
	detector   Detector
	generation uint64
}

// NewCache creates a cache around the loader
func NewCache(load Loader) *Cache {
	return &Cache{load: load}
}

// Get returns the loaded detector, loading it on first use
func (c *Cache) Get(ctx context.Context) (Detector, error) {
	c.mu.RLock()
	detector, generation := c.detector, c.generation
	c.mu.RUnlock()
	if detector != nil {
		return detector, nil
	}

	v, err, _ := c.group.Do(loadKey, func() (any, error) {
		c.mu.RLock()
		if c.detector != nil {
			d := c.detector
			c.mu.RUnlock()
			return d, nil
		}
		c.mu.RUnlock()

		d, err := c.load(ctx)
		if err != nil {
			return nil, &LoadError{Message: "failed to load face detector", Cause: err}
		}
		if d == nil {
			return nil, &LoadError{Message: "loader returned no detector"}
		}

		c.mu.Lock()
		// A Reset during the load discards its result
		if c.generation == generation {
			c.detector = d
		}
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Detector), nil
}

// Preload loads the detector ahead of the first validation
func (c *Cache) Preload(ctx context.Context) error {
	_, err := c.Get(ctx)
	return err
}

// Loaded reports whether a detector is currently cached
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detector != nil
}

// Reset drops the cached detector so the next Get loads again
func (c *Cache) Reset() {
	c.mu.Lock()
	c.detector = nil
	c.generation++
	c.mu.Unlock()
	c.group.Forget(loadKey)
}
