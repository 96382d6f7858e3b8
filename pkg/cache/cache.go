// Package cache provides byte caches used to memoize derived graph data.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything, used with --no-cache
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance
//
// Keys are built by a [Keyer] from a content hash of the serialized graph,
// so an edited graph never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// OrderTTL bounds how long a computed execution order is kept.
	OrderTTL = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// OrderKeyOpts holds the inputs besides the graph that affect an
// execution order.
type OrderKeyOpts struct {
	// Catalog is the hash of the node-type catalog the graph was loaded with.
	Catalog string `json:"catalog,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// OrderKey returns the key for the execution order of a graph.
	OrderKey(graphHash string, opts OrderKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// OrderKey returns "order:<sha256>".
func (DefaultKeyer) OrderKey(graphHash string, opts OrderKeyOpts) string {
	return hashKey("order", graphHash, opts)
}
