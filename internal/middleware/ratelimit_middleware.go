package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pollroom/internal/services"
)

// Limiter is what the rate-limit middleware needs from internal/redis.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit throttles mutating actions per caller. Keyed by user id when
// authenticated, client IP otherwise. A limiter failure fails open: losing
// Redis should not take the forms down with it.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := services.CurrentUser(c.Request.Context()); ok {
			key = userID.String()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.String(http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
