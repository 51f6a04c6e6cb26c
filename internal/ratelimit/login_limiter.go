package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/observability"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// LoginLimiter throttles login attempts per client IP using a Redis
// fixed-window counter. It sits in front of the login endpoint only; the
// permission pipeline itself is not rate limited.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewLoginLimiter creates a limiter instance.
func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration, metrics *observability.Metrics, logger *zap.Logger) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window, metrics: metrics, logger: logger}
}

// Handle counts the attempt and rejects once the window is exhausted. Redis
// outages fail open: throttling is a hardening layer, not a correctness one.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	key := fmt.Sprintf("login_attempts:%s", c.IP())
	ctx := c.Context()

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login throttle unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}

	if count > int64(l.maxAttempts) {
		l.metrics.Increment(observability.CounterLoginThrottleBlocks)
		l.logger.Warn("login throttled",
			zap.String("correlation_id", observability.CorrelationID(c)),
			zap.String("ip", c.IP()),
			zap.Int64("attempts", count),
		)
		ttl, ttlErr := l.rdb.TTL(ctx, key).Result()
		if ttlErr == nil && ttl > 0 {
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
		}
		return apperrors.NewRateLimited("too many login attempts, please try again later")
	}

	return c.Next()
}
