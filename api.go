package recordcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/recordcache/codec"
	pr "github.com/unkn0wn-root/recordcache/provider"
	rd "github.com/unkn0wn-root/recordcache/provider/redis"
)

// FieldFunc extracts the value of a named index field from a record.
// Store calls it once per field of every configured index. Returning
// ok=false means the record carries no value for that field, which
// fails the Store call.
type FieldFunc[R any] func(r R, field string) (value string, ok bool)

// Cache is the high-level, provider-agnostic record cache API.
// R is the caller's record type. Serialization is handled by a pluggable Codec[R].
//
// Every fetch reports one of three states per key: Found (a record was
// cached), Negative (the id was previously confirmed missing from the
// source of truth), Absent (nothing is known). Negative and Absent are
// normal results, never errors.
type Cache[R any] interface {
	Close(context.Context) error

	// Single
	Fetch(ctx context.Context, id string) (Result[R], error)
	FetchByIndex(ctx context.Context, index string, values ...string) (Result[R], error)

	// Bulk (results align with the input: out[i] answers ids[i]/tuples[i])
	FetchMany(ctx context.Context, ids []string) ([]Result[R], error)
	FetchManyByIndex(ctx context.Context, index string, tuples [][]string) ([]Result[R], error)

	// Store writes the encoded record under id and, when indexes are
	// configured, one derived entry per index mapping the index key back
	// to id. All writes share one pipelined round trip and the instance
	// TTL. Pipelining is a performance batch, not a transaction: if the
	// connection drops mid-batch, some index entries may be written
	// without others.
	Store(ctx context.Context, id string, record R) error

	// AddMissing marks ids as confirmed-missing using the instance TTL,
	// so later fetches return Negative instead of falling through to the
	// source of truth. AddMissingTTL does the same with an explicit TTL;
	// ttl <= 0 stores the markers forever.
	AddMissing(ctx context.Context, ids ...string) error
	AddMissingTTL(ctx context.Context, ttl time.Duration, ids ...string) error
}

// Options tune the generic record cache.
// Config and Codec are required; Field is required once Config.Indexes is non-empty.
type Options[R any] struct {
	// Required
	Config Config
	Codec  c.Codec[R]

	// Field extracts index field values from a record at Store time.
	Field FieldFunc[R]

	// Provider overrides the transport entirely; Config.Server is then
	// ignored. The cache owns the provider and closes it on Close.
	Provider pr.Provider

	// Registry supplies the redis client for Config.Server when no
	// Provider is given. Caches sharing a registry and a server identity
	// share one client; Close leaves registry clients open.
	Registry *rd.Registry

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

func New[R any](opts Options[R]) (Cache[R], error) {
	return newCache[R](opts)
}
