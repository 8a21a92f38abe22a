// Package cache stores serialized analysis results between runs.
//
// Building a sequential map or an abstraction over a large netlist is the
// expensive part of most gatewalk sessions. The CLI and the HTTP server keep
// those results in a byte-level [Cache] keyed by a fingerprint of the netlist
// and the query options, so a second run over an unchanged netlist skips the
// walk entirely.
//
// # Backends
//
//   - [NullCache]: stores nothing, used when caching is disabled
//   - [FileCache]: one JSON file per entry below a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several servers on one netlist
//
// Wrap any backend with [Instrument] to report hits, misses and writes to the
// hooks registered in the observability package.
//
// # Keys
//
// A [Keyer] derives keys from a netlist fingerprint (see [Hash]) and the
// options that change the result:
//
//	k := cache.NewDefaultKeyer()
//	key := k.SequentialMapKey(cache.Hash(netlistJSON), cache.SequentialKeyOpts{
//	    Direction: "forward",
//	    Depth:     1,
//	})
//
// [NewScopedKeyer] prefixes every key, which keeps entries of different
// library versions apart in a shared Redis.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
