package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests while Redis is failing instead of using memory
	FailClosed bool
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// Returns [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RateLimiter counts requests in Redis, or in process memory when no Redis
// client is configured.
type RateLimiter struct {
	client *goredis.Client
	secLog *security.SecurityLogger
	store  sync.Map
	now    func() time.Time
}

func NewRateLimiter(client *goredis.Client, secLog *security.SecurityLogger) *RateLimiter {
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	return &RateLimiter{client: client, secLog: secLog, now: time.Now}
}

func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:"}
}

// AuthRateLimitConfig is the strict limit for the public account endpoints.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:auth:", FailClosed: true}
}

// UploadRateLimitConfig limits resume uploads per client IP.
func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:upload:"}
}

// Middleware enforces cfg and sets the X-RateLimit-* headers.
func (rl *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		fullKey := cfg.KeyPrefix + cfg.KeyFunc(c)

		var count int
		var resetAt time.Time
		if rl.client != nil {
			var err error
			count, resetAt, err = rl.checkRedis(c.Request.Context(), fullKey, cfg)
			if err != nil {
				logger.Log.Warn("rate limit backend failed", "error", err, "key_prefix", cfg.KeyPrefix)
				if cfg.FailClosed {
					response.Abort(c, http.StatusServiceUnavailable, apperror.KindExternalService, "Service temporarily unavailable. Please try again.")
					return
				}
				count, resetAt = rl.checkInMemory(fullKey, cfg)
			}
		} else {
			count, resetAt = rl.checkInMemory(fullKey, cfg)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.secLog.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), c.FullPath())
			response.Abort(c, http.StatusTooManyRequests, apperror.KindTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-count))
		c.Next()
	}
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(cfg.Window.Seconds())

	result, err := rl.client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), rl.now().Add(time.Duration(ttl) * time.Second), nil
}

func (rl *RateLimiter) checkInMemory(key string, cfg RateLimitConfig) (int, time.Time) {
	now := rl.now()
	entryI, _ := rl.store.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(cfg.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(cfg.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// Cleanup drops expired in-memory counters until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := rl.now()
			rl.store.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rl.store.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}
}
