package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to the burst", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.2"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("passes requests under the limit", func(t *testing.T) {
		rl := NewRateLimiter(2, time.Minute)

		router := gin.New()
		router.Use(RateLimit(rl))
		router.GET("/", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		router := gin.New()
		router.Use(RateLimit(rl))
		router.GET("/", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest("GET", "/", nil))
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, second.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
	})
}
