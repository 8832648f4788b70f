package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/recordcache"
)

type Options struct {
	// Sampling to avoid floods on hot-path outcomes; 0/1 = log all.
	HitEvery      uint64
	MissEvery     uint64
	NegativeEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix. Index keys can
	// embed user data (emails, usernames), so raw keys stay out of logs
	// unless the caller opts in with an identity Redact.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
	negCtr  atomic.Uint64
}

var _ recordcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("recordcache.hit", "key", h.redact(key))
}

func (h *Hooks) Miss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("recordcache.miss", "key", h.redact(key))
}

func (h *Hooks) Negative(key string) {
	if h.l == nil || !sample(h.opts.NegativeEvery, &h.negCtr) {
		return
	}
	h.l.Debug("recordcache.negative", "key", h.redact(key))
}

func (h *Hooks) DecodeError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("recordcache.decode_error",
		"key", h.redact(key),
		"err", err)
}
