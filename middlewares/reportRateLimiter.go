package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Counter is the part of the Redis client the report limiter uses.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// ReportRateLimiter caps report submissions per submitter within window.
// Authenticated callers are counted by account, anonymous ones by IP. It must
// run after OptionalAuth or AuthMiddleware.
func ReportRateLimiter(counter Counter, prefix string, limit int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Create individual key for each submitter
		key := prefix + ":ip:" + c.ClientIP()
		if caller := CallerFrom(c); caller.Authenticated() {
			key = prefix + ":user:" + caller.ID
		}

		count, err := counter.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).Error("redis error incrementing report count")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		// Set TTL only for the first increment
		if count == 1 {
			if err := counter.Expire(ctx, key, window).Err(); err != nil {
				log.WithError(err).Error("redis error setting report limit TTL")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := counter.TTL(ctx, key).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "report limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
