package recordcache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	co "github.com/unkn0wn-root/recordcache/codec"
	pr "github.com/unkn0wn-root/recordcache/provider"
	rd "github.com/unkn0wn-root/recordcache/provider/redis"
)

// negativeMarker is the reserved wire value meaning "confirmed missing".
// It predates this package and must stay stable for interoperability with
// entries written by other clients. Codecs must never emit it for a real
// record; see the package doc.
var negativeMarker = []byte("0")

type cache[R any] struct {
	catalog  *Catalog
	provider pr.Provider
	codec    co.Codec[R]
	field    FieldFunc[R]
	log      Logger
	hooks    Hooks
	ttl      time.Duration
}

var _ Cache[struct{}] = (*cache[struct{}])(nil)

func newCache[R any](opts Options[R]) (*cache[R], error) {
	if opts.Codec == nil {
		return nil, fmt.Errorf("recordcache: codec is required")
	}
	if err := opts.Config.check(); err != nil {
		return nil, err
	}
	catalog, err := newCatalog(opts.Config.Indexes)
	if err != nil {
		return nil, err
	}
	if !catalog.Empty() && opts.Field == nil {
		return nil, fmt.Errorf("recordcache: field func is required when indexes are configured")
	}

	provider := opts.Provider
	if provider == nil {
		if opts.Registry == nil {
			return nil, fmt.Errorf("recordcache: provider or registry is required")
		}
		p, err := opts.Registry.Provider(rd.Identity{
			Host: opts.Config.Server.Host,
			Port: opts.Config.Server.Port,
			DB:   opts.Config.Server.DB,
		})
		if err != nil {
			return nil, err
		}
		provider = p
	}

	c := &cache[R]{
		catalog:  catalog,
		provider: provider,
		codec:    opts.Codec,
		field:    opts.Field,
		ttl:      opts.Config.ttl(),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return c, nil
}

func (c *cache[R]) Close(ctx context.Context) error {
	return c.provider.Close(ctx)
}

func (c *cache[R]) Fetch(ctx context.Context, id string) (Result[R], error) {
	raw, ok, err := c.provider.Get(ctx, id)
	if err != nil {
		return Result[R]{}, err
	}
	return c.classify(id, raw, ok)
}

func (c *cache[R]) FetchMany(ctx context.Context, ids []string) ([]Result[R], error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := c.provider.MGet(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Result[R], len(ids))
	for i, v := range vals {
		res, err := c.classify(ids[i], v.B, v.OK)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func (c *cache[R]) FetchByIndex(ctx context.Context, index string, values ...string) (Result[R], error) {
	key, err := c.catalog.Key(index, values)
	if err != nil {
		return Result[R]{}, err
	}
	raw, ok, err := c.provider.Resolve(ctx, key)
	if err != nil {
		return Result[R]{}, err
	}
	return c.classify(key, raw, ok)
}

func (c *cache[R]) FetchManyByIndex(ctx context.Context, index string, tuples [][]string) ([]Result[R], error) {
	if len(tuples) == 0 {
		return nil, nil
	}
	// build every key first so a bad tuple fails before any network call
	indexKeys := make([]string, len(tuples))
	for i, tuple := range tuples {
		k, err := c.catalog.Key(index, tuple)
		if err != nil {
			return nil, err
		}
		indexKeys[i] = k
	}

	b := c.provider.Batch()
	for _, k := range indexKeys {
		b.Resolve(k)
	}
	vals, err := b.Exec(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Result[R], len(tuples))
	for i, v := range vals {
		res, err := c.classify(indexKeys[i], v.B, v.OK)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func (c *cache[R]) Store(ctx context.Context, id string, record R) error {
	payload, err := c.codec.Encode(record)
	if err != nil {
		return err
	}
	if c.catalog.Empty() {
		return c.provider.Set(ctx, id, payload, c.ttl)
	}

	indexKeys, err := c.indexKeys(record)
	if err != nil {
		return err
	}
	// primary entry first, then one pointer entry per index, one round trip
	b := c.provider.Batch()
	b.Set(id, payload, c.ttl)
	for _, k := range indexKeys {
		b.Set(k, []byte(id), c.ttl)
	}
	if _, err := b.Exec(ctx); err != nil {
		return err
	}
	c.log.Debug("stored record", Fields{"id": id, "indexes": len(indexKeys)})
	return nil
}

func (c *cache[R]) AddMissing(ctx context.Context, ids ...string) error {
	return c.addMissing(ctx, c.ttl, ids)
}

func (c *cache[R]) AddMissingTTL(ctx context.Context, ttl time.Duration, ids ...string) error {
	return c.addMissing(ctx, ttl, ids)
}

func (c *cache[R]) addMissing(ctx context.Context, ttl time.Duration, ids []string) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return c.provider.Set(ctx, ids[0], negativeMarker, ttl)
	}
	b := c.provider.Batch()
	for _, id := range ids {
		b.Set(id, negativeMarker, ttl)
	}
	_, err := b.Exec(ctx)
	return err
}

// classify turns one raw lookup result into the three-way outcome. An
// empty stored value counts as Absent, matching what other writers of
// these entries produce for "nothing cached".
func (c *cache[R]) classify(key string, raw []byte, ok bool) (Result[R], error) {
	if !ok || len(raw) == 0 {
		c.hooks.Miss(key)
		return Result[R]{}, nil
	}
	if bytes.Equal(raw, negativeMarker) {
		c.hooks.Negative(key)
		return Result[R]{State: Negative}, nil
	}
	rec, err := c.codec.Decode(raw)
	if err != nil {
		c.log.Warn("decode failed", Fields{"key": key, "err": err})
		c.hooks.DecodeError(key, err)
		return Result[R]{}, &DecodeError{Key: key, Err: err}
	}
	c.hooks.Hit(key)
	return Result[R]{State: Found, Record: rec}, nil
}

// indexKeys builds the derived key for every configured index from the
// record's own field values, in catalog order.
func (c *cache[R]) indexKeys(record R) ([]string, error) {
	all := c.catalog.All()
	out := make([]string, 0, len(all))
	for _, idx := range all {
		values := make([]string, len(idx.Fields))
		for i, f := range idx.Fields {
			v, ok := c.field(record, f)
			if !ok {
				return nil, &IndexKeyError{Index: idx.Name, Field: f, Reason: "record has no value for this field"}
			}
			values[i] = v
		}
		k, err := c.catalog.Key(idx.Name, values)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
