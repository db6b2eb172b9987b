package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

const commandTimeout = 2 * time.Second

// registerFailure increments the failure counter and, once it reaches the
// threshold, replaces it with a block marker. Runs atomically per key.
//
//	KEYS[1] failure counter, KEYS[2] block marker
//	ARGV[1] max attempts, ARGV[2] block ms, ARGV[3] expiry ms
var registerFailure = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
if n >= tonumber(ARGV[1]) then
  redis.call('SET', KEYS[2], n, 'PX', ARGV[2])
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// LoginAttemptLimiter is a rate limiter shared by every instance pointing at
// the same Redis. Key TTLs replace the in-memory sweep.
// Key format: login:fail:<key> and login:block:<key>
//
// Redis failures are logged and fail open: a limiter outage must not lock
// every user out.
type LoginAttemptLimiter struct {
	client        *redis.Client
	maxAttempts   int
	blockDuration time.Duration
	expiry        time.Duration
	log           zerolog.Logger
}

// NewLoginAttemptLimiter wraps client. maxAttempts, blockDuration and expiry
// must be positive.
func NewLoginAttemptLimiter(client *redis.Client, maxAttempts int, blockDuration, expiry time.Duration, log zerolog.Logger) *LoginAttemptLimiter {
	return &LoginAttemptLimiter{
		client:        client,
		maxAttempts:   maxAttempts,
		blockDuration: blockDuration,
		expiry:        expiry,
		log:           log,
	}
}

// IsBlocked reports whether a block marker exists for key. Expired markers are
// removed by Redis itself.
func (l *LoginAttemptLimiter) IsBlocked(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := l.client.Exists(ctx, blockKey(key)).Result()
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit: block check failed")
		return false
	}
	return n > 0
}

func (l *LoginAttemptLimiter) RegisterFailedAttempt(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	blocked, err := registerFailure.Run(ctx, l.client,
		[]string{failKey(key), blockKey(key)},
		l.maxAttempts, l.blockDuration.Milliseconds(), l.expiry.Milliseconds(),
	).Int()
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit: register failure failed")
		return
	}
	if blocked == 1 {
		metrics.RateLimitBlocksTotal.Inc()
		l.log.Warn().Str("key", key).Dur("block", l.blockDuration).Msg("rate limit: key blocked")
	}
}

func (l *LoginAttemptLimiter) RegisterSuccessfulLogin(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := l.client.Del(ctx, failKey(key), blockKey(key)).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit: reset failed")
	}
}

func failKey(key string) string  { return "login:fail:" + key }
func blockKey(key string) string { return "login:block:" + key }
