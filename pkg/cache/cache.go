// Package cache provides pluggable caching for the explorer pipeline.
//
// Four backends are available: [FileCache] for CLI usage (XDG cache
// directory), [RedisCache] for server deployments, [MemoryCache] for
// in-process use, and [NullCache] to disable caching entirely. Keys are
// produced by a [Keyer] so that every
// component that touches the cache agrees on the key schema.
package cache

import (
	"context"
	"time"
)

// TTLs per cached artifact class.
const (
	// TTLMetadata is how long a fetched $metadata document stays fresh.
	TTLMetadata = 24 * time.Hour

	// TTLLayout is how long a computed layout stays fresh. Layouts are keyed
	// by topology hash, so they only go stale when the key schema changes.
	TTLLayout = 7 * 24 * time.Hour

	// TTLQuery is how long query results stay fresh. Short, since service
	// data changes underneath us.
	TTLQuery = 10 * time.Minute

	// TTLArtifact is how long rendered outputs (SVG, PNG) stay fresh.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures. A ttl of 0 in Set means the
// entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts carries every input that influences a layout computation,
// so that changed engine settings never serve a stale layout.
type LayoutKeyOpts struct {
	DefaultWidth  float64
	DefaultHeight float64
	TieBreak      string
	Columns       int
	HGap          float64
	VGap          float64
}

// ArtifactKeyOpts carries the options that influence rendering.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
	RankDir  string
}

// Keyer produces cache keys for each pipeline stage.
type Keyer interface {
	// MetadataKey keys a raw $metadata document by service URL.
	MetadataKey(serviceURL string) string
	// QueryKey keys a query result by service URL and encoded query.
	QueryKey(serviceURL, query string) string
	// LayoutKey keys a computed layout by topology hash and engine options.
	LayoutKey(topologyHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key schema. Keys are "<class>:<sha256>",
// hashing the identifying parts so arbitrary URLs and option sets become
// safe, fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

func (k *DefaultKeyer) MetadataKey(serviceURL string) string {
	return hashKey("metadata", serviceURL)
}

func (k *DefaultKeyer) QueryKey(serviceURL, query string) string {
	return hashKey("query", serviceURL, query)
}

func (k *DefaultKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", topologyHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, giving callers isolated cache
// namespaces (e.g. per profile) on top of a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated key.
// A nil inner keyer defaults to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) MetadataKey(serviceURL string) string {
	return k.prefix + k.inner.MetadataKey(serviceURL)
}

func (k *ScopedKeyer) QueryKey(serviceURL, query string) string {
	return k.prefix + k.inner.QueryKey(serviceURL, query)
}

func (k *ScopedKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(topologyHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
