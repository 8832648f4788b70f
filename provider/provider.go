// Package provider defines the storage abstraction used by recordcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set. The cache relies on this to recognize its reserved
// negative marker by equality.
package provider

import (
	"context"
	"time"
)

// Value is one raw reply from the store. OK reports whether the key
// existed. For acknowledged writes inside a batch, OK is true and B nil.
type Value struct {
	B  []byte
	OK bool
}

// Provider is a byte store with TTLs, ordered multi-get, atomic indirect
// resolve and pipelined batches. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// MGet returns one Value per key, in input order, in one round trip.
	MGet(ctx context.Context, keys []string) ([]Value, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Resolve reads the value at key and, when present, treats it as a
	// second key and returns that key's value. Both reads happen as one
	// atomic operation with respect to other writers; a client-side
	// two-step lookup would race with expiry between the steps.
	Resolve(ctx context.Context, key string) ([]byte, bool, error)

	// Batch starts an ordered operation batch executed in one round trip.
	Batch() Batch

	// Close releases resources.
	Close(ctx context.Context) error
}

// Batch queues operations and executes them in enqueue order within a
// single round trip. Exec replies preserve that order: Get and Resolve
// yield the value (OK=false on a miss), Set yields an acknowledgement.
// Execution is pipelined, not transactional: a connection failure
// mid-batch can leave a prefix of the writes applied.
// A Batch is single-use and not safe for concurrent use.
type Batch interface {
	Get(key string)
	Set(key string, value []byte, ttl time.Duration)
	Resolve(key string)
	Exec(ctx context.Context) ([]Value, error)
}
