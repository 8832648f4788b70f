// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/recordcache"
//	"github.com/unkn0wn-root/recordcache/codec"
//	"github.com/unkn0wn-root/recordcache/hooks/async"
//	"github.com/unkn0wn-root/recordcache/hooks/slog"
//
// )
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 10,  // ~every 10th miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := recordcache.New[User](recordcache.Options[User]{
//	    Config:   cfg,
//	    Codec:    codec.JSON[User]{},
//	    Registry: registry,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/recordcache"
)

type Hooks struct {
	inner recordcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ recordcache.Hooks = (*Hooks)(nil)

func New(inner recordcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)      { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)     { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Negative(k string) { h.try(func() { h.inner.Negative(k) }) }
func (h *Hooks) DecodeError(k string, err error) {
	h.try(func() { h.inner.DecodeError(k, err) })
}
