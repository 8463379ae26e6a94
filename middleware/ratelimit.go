package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redisClient *redis.Client
}

// NewRateLimiter returns a fixed-window limiter. A nil client disables it.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

// Limit allows limit requests per window for each learner (or client IP for
// anonymous calls). Redis failures let the request through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.redisClient == nil || limit <= 0 {
			return c.Next()
		}

		subject := c.IP()
		if id := UserID(c); id != uuid.Nil {
			subject = id.String()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, subject)

		ctx := c.UserContext()
		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := rl.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			log.Printf("rate limiter unavailable: %v", err)
			return c.Next()
		}
		count := incr.Val()

		// a key left without expiry would block the subject for good, so any
		// request that sees one sets it again
		if windowUnset(ttl.Val()) {
			if err := rl.redisClient.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("rate limiter could not set window on %s: %v", key, err)
			}
		}

		if count > int64(limit) {
			retry := ttl.Val()
			if windowUnset(retry) {
				retry = window
			}
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%.0f", retry.Seconds()))
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests!", fiber.Map{
				"retry_after_seconds": int(retry.Seconds()),
			})
		}
		return c.Next()
	}
}

// windowUnset reports whether a TTL reply means the key carries no expiry
// (-1) or does not exist (-2)
func windowUnset(ttl time.Duration) bool {
	return ttl < 0
}
