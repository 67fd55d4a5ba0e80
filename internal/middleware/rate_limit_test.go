package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRateLimiterIsAllowed(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "test"})
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		allowed, remaining, reset, err := rl.IsAllowed(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, want, allowed, "request %d", i+1)
		assert.GreaterOrEqual(t, remaining, 0)
		assert.True(t, reset.After(time.Now()))
	}

	allowed, _, _, err := rl.IsAllowed(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per client")
}

func TestRateLimiterMiddleware(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "mw"}).Middleware())
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(method string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/", nil))
		return w
	}

	w := send(http.MethodPost)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "detail")

	assert.Equal(t, http.StatusNoContent, send(http.MethodGet).Code, "reads are not limited")
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewWriteRateLimiter(nil, 1).Middleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
