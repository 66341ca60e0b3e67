package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/tradesphere/pkg/ratelimiter"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCooldown(t *testing.T) {
	limiter := ratelimiter.New(nil)

	t.Run("unauthenticated", func(t *testing.T) {
		r := router(Cooldown(limiter, "upload_images", time.Minute))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("disabled limiter passes through", func(t *testing.T) {
		userID := uuid.New().String()
		setUser := func(c *gin.Context) {
			c.Set(response.ContextUserID, userID)
			c.Next()
		}
		r := router(setUser, Cooldown(limiter, "upload_images", time.Minute))

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, userID, w.Body.String())
		}
	})
}
