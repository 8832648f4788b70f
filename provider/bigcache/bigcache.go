// Package bigcache adapts allegro/bigcache as an in-process provider.
// Useful for tests and single-node deployments where a separate redis
// server is not worth running.
package bigcache

import (
	"context"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/recordcache/provider"
)

type Provider struct {
	// mu makes batches and two-step resolves atomic against writers.
	// BigCache itself is concurrency-safe per operation.
	mu sync.RWMutex
	c  *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// LifeWindow is the global entry lifetime. BigCache has no per-entry
	// TTL, so per-call TTLs are ignored and every entry, negative markers
	// included, lives this long.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
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

func (p *Provider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.c.Set(key, value)
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
	return p.c.Close()
}

func (p *Provider) get(key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
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
}

// batch queues operations and applies them in order under the provider
// write lock, so readers never observe a half-applied batch.
type batch struct {
	p   *Provider
	ops []batchOp
}

var _ pr.Batch = (*batch)(nil)

func (b *batch) Get(key string)     { b.ops = append(b.ops, batchOp{kind: 'g', key: key}) }
func (b *batch) Resolve(key string) { b.ops = append(b.ops, batchOp{kind: 'r', key: key}) }

func (b *batch) Set(key string, value []byte, _ time.Duration) {
	b.ops = append(b.ops, batchOp{kind: 's', key: key, value: value})
}

func (b *batch) Exec(_ context.Context) ([]pr.Value, error) {
	if len(b.ops) == 0 {
		return nil, nil
	}
	b.p.mu.Lock()
	defer b.p.mu.Unlock()

	out := make([]pr.Value, len(b.ops))
	for i, op := range b.ops {
		switch op.kind {
		case 'g':
			raw, ok, err := b.p.get(op.key)
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: ok}
		case 's':
			if err := b.p.c.Set(op.key, op.value); err != nil {
				return nil, err
			}
			out[i] = pr.Value{OK: true}
		case 'r':
			raw, ok, err := b.p.resolve(op.key)
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: ok}
		}
	}
	return out, nil
}
