// Package ristretto adapts dgraph-io/ristretto as an in-process
// provider. Ristretto admits writes through an async buffer and may
// drop them under pressure, so single Sets are best-effort; batches
// wait for their writes to land before returning.
package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/recordcache/provider"
)

type Provider struct {
	mu sync.RWMutex
	c  *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.get(key)
}

func (p *Provider) MGet(_ context.Context, keys []string) ([]pr.Value, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]pr.Value, len(keys))
	for i, key := range keys {
		b, ok, err := p.get(key)
		if err != nil {
			return nil, err
		}
		out[i] = pr.Value{B: b, OK: ok}
	}
	return out, nil
}

// Set stores value with cost equal to its byte length. A dropped write
// is not an error; the next read simply misses and falls through.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(key, value, ttl)
	return nil
}

func (p *Provider) Resolve(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolve(key)
}

func (p *Provider) Batch() pr.Batch {
	return &batch{p: p}
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics was set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

func (p *Provider) get(key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (p *Provider) set(key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0 // ristretto treats 0 as "never expire"
	}
	p.c.SetWithTTL(key, value, int64(len(value)), ttl)
}

func (p *Provider) resolve(key string) ([]byte, bool, error) {
	primary, ok, err := p.get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return p.get(string(primary))
}

type batchOp struct {
	kind  byte // 'g', 's', 'r'
	key   string
	value []byte
	ttl   time.Duration
}

type batch struct {
	p   *Provider
	ops []batchOp
}

var _ pr.Batch = (*batch)(nil)

func (b *batch) Get(key string)     { b.ops = append(b.ops, batchOp{kind: 'g', key: key}) }
func (b *batch) Resolve(key string) { b.ops = append(b.ops, batchOp{kind: 'r', key: key}) }

func (b *batch) Set(key string, value []byte, ttl time.Duration) {
	b.ops = append(b.ops, batchOp{kind: 's', key: key, value: value, ttl: ttl})
}

// Exec applies queued operations in order under the provider write lock
// and waits for buffered writes, so a stored record and its index
// entries become visible together.
func (b *batch) Exec(_ context.Context) ([]pr.Value, error) {
	if len(b.ops) == 0 {
		return nil, nil
	}
	b.p.mu.Lock()
	defer b.p.mu.Unlock()

	out := make([]pr.Value, len(b.ops))
	wrote := false
	for i, op := range b.ops {
		switch op.kind {
		case 'g':
			raw, ok, err := b.p.get(op.key)
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: ok}
		case 's':
			b.p.set(op.key, op.value, op.ttl)
			wrote = true
			out[i] = pr.Value{OK: true}
		case 'r':
			raw, ok, err := b.p.resolve(op.key)
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: ok}
		}
	}
	if wrote {
		b.p.c.Wait()
	}
	return out, nil
}
