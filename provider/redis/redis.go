package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/recordcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// resolveScript performs the two-step secondary lookup server-side: the
// value at KEYS[1] is the primary key; its value is the reply. Running it
// as one script closes the window where the primary entry expires between
// the index read and the primary read.
var resolveScript = goredis.NewScript(`
local primary = redis.call('GET', KEYS[1])
if not primary then
	return false
end
return redis.call('GET', primary)
`)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool

	scriptMu sync.Mutex
	scriptOK atomic.Bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) MGet(ctx context.Context, keys []string) ([]pr.Value, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]pr.Value, len(vals))
	for i, v := range vals {
		b, ok, err := replyBytes(v)
		if err != nil {
			return nil, fmt.Errorf("redis mget %q: %w", keys[i], err)
		}
		out[i] = pr.Value{B: b, OK: ok}
	}
	return out, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}
	return p.rdb.Set(ctx, key, value, ttl).Err()
}

func (p *Redis) Resolve(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := resolveScript.Run(ctx, p.rdb, []string{key}).Result()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return replyBytes(v)
}

func (p *Redis) Batch() pr.Batch {
	return &batch{p: p, pipe: p.rdb.Pipeline()}
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// ensureScript loads the resolve script once per provider. Script.Run
// self-heals NOSCRIPT on direct calls, but inside a pipeline the error
// only surfaces at Exec, so batches load up front.
func (p *Redis) ensureScript(ctx context.Context) error {
	if p.scriptOK.Load() {
		return nil
	}
	p.scriptMu.Lock()
	defer p.scriptMu.Unlock()
	if p.scriptOK.Load() {
		return nil
	}
	if err := resolveScript.Load(ctx, p.rdb).Err(); err != nil {
		return err
	}
	p.scriptOK.Store(true)
	return nil
}

type batch struct {
	p        *Redis
	pipe     goredis.Pipeliner
	cmds     []goredis.Cmder
	resolves bool
}

var _ pr.Batch = (*batch)(nil)

func (b *batch) Get(key string) {
	b.cmds = append(b.cmds, b.pipe.Get(context.Background(), key))
}

func (b *batch) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 0
	}
	b.cmds = append(b.cmds, b.pipe.Set(context.Background(), key, value, ttl))
}

func (b *batch) Resolve(key string) {
	b.resolves = true
	b.cmds = append(b.cmds, resolveScript.Run(context.Background(), b.pipe, []string{key}))
}

func (b *batch) Exec(ctx context.Context) ([]pr.Value, error) {
	if len(b.cmds) == 0 {
		return nil, nil
	}
	if b.resolves {
		if err := b.p.ensureScript(ctx); err != nil {
			return nil, err
		}
	}
	// Exec reports the first per-command error, which for a missed GET is
	// goredis.Nil; misses are classified per command below.
	if _, err := b.pipe.Exec(ctx); err != nil && err != goredis.Nil {
		return nil, err
	}
	out := make([]pr.Value, len(b.cmds))
	for i, cmd := range b.cmds {
		switch c := cmd.(type) {
		case *goredis.StringCmd: // queued Get
			raw, err := c.Bytes()
			if err == goredis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: true}
		case *goredis.StatusCmd: // queued Set
			if err := c.Err(); err != nil {
				return nil, err
			}
			out[i] = pr.Value{OK: true}
		case *goredis.Cmd: // queued Resolve
			v, err := c.Result()
			if err == goredis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}
			raw, ok, err := replyBytes(v)
			if err != nil {
				return nil, err
			}
			out[i] = pr.Value{B: raw, OK: ok}
		default:
			return nil, fmt.Errorf("redis batch: unexpected command type %T", cmd)
		}
	}
	return out, nil
}

// replyBytes normalizes a raw reply into value bytes. MGET and script
// replies arrive as untyped values: nil for a miss, string or []byte for
// a hit.
func replyBytes(v any) ([]byte, bool, error) {
	switch vv := v.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(vv), true, nil
	case []byte:
		return vv, true, nil
	default:
		return nil, false, fmt.Errorf("unexpected reply type %T", v)
	}
}
