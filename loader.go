package recordcache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches a record from the source of truth. ok=false means the
// id does not exist there, which the loader records as a negative entry.
type LoadFunc[R any] func(ctx context.Context, id string) (rec R, ok bool, err error)

// Loader composes a Cache with the source of truth into a full
// read-through: Get answers from the cache when it can, otherwise loads,
// stores the outcome, and returns it. Concurrent loads for the same id
// collapse into a single LoadFunc call; late arrivals share its result.
type Loader[R any] struct {
	cache Cache[R]
	load  LoadFunc[R]
	sf    singleflight.Group
}

func NewLoader[R any](cache Cache[R], load LoadFunc[R]) (*Loader[R], error) {
	if cache == nil {
		return nil, fmt.Errorf("recordcache: cache is required")
	}
	if load == nil {
		return nil, fmt.Errorf("recordcache: load func is required")
	}
	return &Loader[R]{cache: cache, load: load}, nil
}

// Get returns Found with the record when it exists in cache or source,
// and Negative when the source confirmed the id missing. Absent never
// escapes: an Absent cache answer triggers the load path. Cache write
// failures after a successful load propagate; callers wanting
// best-effort writes can wrap LoadFunc themselves.
func (l *Loader[R]) Get(ctx context.Context, id string) (Result[R], error) {
	res, err := l.cache.Fetch(ctx, id)
	if err != nil || res.State != Absent {
		return res, err
	}

	v, err, _ := l.sf.Do(id, func() (any, error) {
		// an earlier flight may have filled the cache while we queued
		res, err := l.cache.Fetch(ctx, id)
		if err != nil || res.State != Absent {
			return res, err
		}
		rec, ok, err := l.load(ctx, id)
		if err != nil {
			return Result[R]{}, err
		}
		if !ok {
			if err := l.cache.AddMissing(ctx, id); err != nil {
				return Result[R]{}, err
			}
			return Result[R]{State: Negative}, nil
		}
		if err := l.cache.Store(ctx, id, rec); err != nil {
			return Result[R]{}, err
		}
		return Result[R]{State: Found, Record: rec}, nil
	})
	if err != nil {
		return Result[R]{}, err
	}
	return v.(Result[R]), nil
}
