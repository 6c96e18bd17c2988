// Package cache stores rendered diagram artifacts.
//
// Rendering is deterministic: the same viewer data and options always give
// the same bytes, so artifacts are keyed by a hash of both. Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: entries on local disk, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: shared cache with a TTL index
//
// [ScopedKeyer] namespaces keys, e.g. per API tenant.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of the artifact rendered from data with
	// the given options.
	ArtifactKey(dataHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs besides the data.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Options any    `json:"options"` // normalized render options
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dataHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dataHash, opts)
}
