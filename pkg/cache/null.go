package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// NullCache is the cache used when caching is turned off (--no-cache) and
// by tests that must always recompute a layout or artifact.
//
// Every lookup misses and every write is dropped. The cache still counts
// what the pipeline asked of it, so a caller can check that a --no-cache
// run went through the lookup path without serving anything from it.
type NullCache struct {
	lookups atomic.Int64
	dropped atomic.Int64
}

// NullStats reports the traffic a [NullCache] has absorbed.
type NullStats struct {
	Lookups int64 // Get calls, all of which missed
	Dropped int64 // Set calls whose data was discarded
}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get records the lookup and reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.lookups.Add(1)
	return nil, false, nil
}

// Set records the write and discards data.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.dropped.Add(1)
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

func (c *NullCache) Close() error { return nil }

// Stats returns the lookup and write counts so far.
func (c *NullCache) Stats() NullStats {
	return NullStats{Lookups: c.lookups.Load(), Dropped: c.dropped.Load()}
}

var _ Cache = (*NullCache)(nil)
