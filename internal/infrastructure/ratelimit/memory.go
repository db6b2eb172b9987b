// Package ratelimit implements the login brute-force limiter: per-key failure
// counters with a temporary lockout once a threshold is reached.
//
// Keys are opaque strings; the authentication gate uses "<login>:<origin>" and
// the bare origin. Each key is updated with an atomic per-key compute on a
// concurrent map, so unrelated keys never contend with each other and the
// background sweep never blocks logins.
package ratelimit

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

const (
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 5 * time.Minute
	DefaultExpiry        = 10 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
)

// Config tunes the limiter. Zero values fall back to the defaults above.
type Config struct {
	MaxAttempts   int
	BlockDuration time.Duration
	Expiry        time.Duration
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = DefaultBlockDuration
	}
	if c.Expiry <= 0 {
		c.Expiry = DefaultExpiry
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Entry is the state held for one key. Entries are immutable once stored; every
// update installs a fresh value.
type Entry struct {
	FailureCount  int
	LastAttemptAt time.Time
	BlockedUntil  *time.Time
}

func (e *Entry) blockExpired(now time.Time) bool {
	return e.BlockedUntil != nil && !now.Before(*e.BlockedUntil)
}

// MemoryLimiter is the in-process limiter. State is lost on restart.
type MemoryLimiter struct {
	cfg     Config
	entries *xsync.MapOf[string, *Entry]
	clock   clock.Clock
	log     zerolog.Logger
}

// Option customises a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithClock overrides the limiter's time source.
func WithClock(c clock.Clock) Option {
	return func(l *MemoryLimiter) {
		if c != nil {
			l.clock = c
		}
	}
}

func NewMemoryLimiter(cfg Config, log zerolog.Logger, opts ...Option) *MemoryLimiter {
	l := &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		entries: xsync.NewMapOf[string, *Entry](),
		clock:   clock.New(),
		log:     log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsBlocked reports whether key is inside an active block window. An expired
// block is evicted as part of the check.
func (l *MemoryLimiter) IsBlocked(key string) bool {
	e, ok := l.entries.Load(key)
	if !ok || e.BlockedUntil == nil {
		return false
	}
	now := l.clock.Now()
	if now.Before(*e.BlockedUntil) {
		return true
	}

	// Evict only if the entry is still expired at compute time; a concurrent
	// success or failure may already have replaced it.
	l.entries.Compute(key, func(cur *Entry, loaded bool) (*Entry, bool) {
		if !loaded {
			return nil, true
		}
		return cur, cur.blockExpired(now)
	})
	l.publishSize()
	return false
}

// RegisterFailedAttempt counts one failure for key and starts a block window
// when the count reaches the threshold.
func (l *MemoryLimiter) RegisterFailedAttempt(key string) {
	now := l.clock.Now()
	var blocked bool

	l.entries.Compute(key, func(cur *Entry, loaded bool) (*Entry, bool) {
		next := &Entry{FailureCount: 1, LastAttemptAt: now}
		if loaded {
			next.FailureCount = cur.FailureCount + 1
		}
		if next.FailureCount >= l.cfg.MaxAttempts {
			until := now.Add(l.cfg.BlockDuration)
			next.BlockedUntil = &until
			blocked = true
		}
		return next, false
	})

	if blocked {
		metrics.RateLimitBlocksTotal.Inc()
		l.log.Warn().Str("key", key).Dur("block", l.cfg.BlockDuration).Msg("rate limit: key blocked")
	}
	l.publishSize()
}

// RegisterSuccessfulLogin forgets everything about key.
func (l *MemoryLimiter) RegisterSuccessfulLogin(key string) {
	l.entries.Delete(key)
	l.publishSize()
}

// Snapshot returns a copy of the entry for key, for diagnostics and tests.
func (l *MemoryLimiter) Snapshot(key string) (Entry, bool) {
	e, ok := l.entries.Load(key)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	return l.entries.Size()
}

// Sweep removes entries whose block window has ended and never-blocked entries
// whose last failure is older than the configured expiry. It returns the
// number of entries removed.
func (l *MemoryLimiter) Sweep() int {
	now := l.clock.Now()
	cutoff := now.Add(-l.cfg.Expiry)
	removed := 0

	l.entries.Range(func(key string, _ *Entry) bool {
		l.entries.Compute(key, func(cur *Entry, loaded bool) (*Entry, bool) {
			if !loaded {
				return nil, true
			}
			var stale bool
			if cur.BlockedUntil != nil {
				stale = cur.blockExpired(now)
			} else {
				stale = cur.LastAttemptAt.Before(cutoff)
			}
			if stale {
				removed++
			}
			return cur, stale
		})
		return true
	})

	if removed > 0 {
		metrics.RateLimitSweptTotal.Add(float64(removed))
		l.log.Debug().Int("removed", removed).Int("remaining", l.entries.Size()).Msg("rate limit: sweep")
	}
	l.publishSize()
	return removed
}

// Start runs Sweep every SweepInterval until ctx is cancelled. It returns
// immediately; the sweep runs on its own goroutine.
func (l *MemoryLimiter) Start(ctx context.Context) {
	ticker := l.clock.Ticker(l.cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

func (l *MemoryLimiter) publishSize() {
	metrics.RateLimitEntries.Set(float64(l.entries.Size()))
}
