package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/flixsy/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRateLimit is a fixed-window per-IP limiter, meant for the auth
// endpoints where credential stuffing is the threat. The window lives in
// Redis so the limit holds across instances. A nil client disables the
// limiter, which is the test and single-box development configuration.
func RedisRateLimit(client *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// A broken limiter failing open would expose login to brute
			// force, so reject instead.
			logger.Error("rate limit check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error", "message": "service temporarily unavailable",
			})
			c.Abort()
			return
		}

		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				logger.Error("rate limit expire failed", err)
			}
		}

		if count > int64(maxRequests) {
			logger.Log.Warn("rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("route", c.FullPath()),
				zap.Int64("count", count),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":      "error",
				"message":     "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
