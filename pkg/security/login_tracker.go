package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // window the counter lives for
	BlockDuration time.Duration
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed logins per email in Redis and blocks the email
// once MaxAttempts is reached. A nil client disables tracking.
type LoginTracker struct {
	client *goredis.Client
	config LoginTrackerConfig
	logger *SecurityLogger
}

func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = DefaultLoginTrackerConfig().AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = DefaultLoginTrackerConfig().BlockDuration
	}
	if logger == nil {
		logger = NopSecurityLogger()
	}
	return &LoginTracker{client: client, config: config, logger: logger}
}

const (
	failLoginUserPrefix    = "fail:login:user:"
	blockedLoginUserPrefix = "blocked:login:user:"
)

// Atomic increment with TTL on first set
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	if lt == nil || lt.client == nil {
		return false, nil
	}

	exists, err := lt.client.Exists(ctx, blockedLoginUserPrefix+email).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check user block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt returns whether the email is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error) {
	if lt == nil || lt.client == nil {
		return false, nil
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{failLoginUserPrefix + email}, ttlSeconds).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment user counter: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Lua script")
	}

	if int(count) < lt.config.MaxAttempts {
		return false, nil
	}

	if err := lt.client.Set(ctx, blockedLoginUserPrefix+email, "1", lt.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set user block: %w", err)
	}
	lt.logger.LogBlockCreated(ctx, email, ip, int(lt.config.BlockDuration.Minutes()))
	return true, nil
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	if lt == nil || lt.client == nil {
		return nil
	}
	if err := lt.client.Del(ctx, failLoginUserPrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	return nil
}
