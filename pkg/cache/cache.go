// Package cache stores rendered artifacts between listtree runs.
//
// Rendering an SVG goes through Graphviz, which is by far the slowest step
// of the pipeline. The pipeline keys each artifact by a hash of the input
// that produced it, so repeated renders of an unchanged script are served
// from the cache.
//
// Two implementations are provided:
//   - [FileCache]: entries stored as JSON files under a directory (CLI)
//   - [NullCache]: never stores anything (--no-cache, tests)
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for use from multiple goroutines.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
