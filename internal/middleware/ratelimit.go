package middleware

import (
	"errors"
	"strconv"
	"time"

	"anoa.com/tradesphere/pkg/ratelimiter"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
)

// Cooldown allows one request per window for each authenticated user.
// It must run after RequireAuth.
func Cooldown(limiter *ratelimiter.Limiter, action string, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		if _, err := limiter.Acquire(c.Request.Context(), userID, action, window); err != nil {
			var rle *ratelimiter.RateLimitError
			if errors.As(err, &rle) {
				c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
			}
			response.ResponseError(c, err)
			return
		}

		c.Next()
	}
}
