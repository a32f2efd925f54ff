package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexnum/sentinel/core/ratelimit"
	"github.com/nexnum/sentinel/middleware"
)

func newLimiter(t *testing.T, capacity int) *ratelimit.Limiter {
	t.Helper()

	limiter, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)
	return limiter
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("sets rate limit headers", func(t *testing.T) {
		t.Parallel()

		h := middleware.RateLimit(newLimiter(t, 5))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("exhaustion returns 429 with retry-after", func(t *testing.T) {
		t.Parallel()

		h := middleware.RateLimit(newLimiter(t, 2))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		var rec *httptest.ResponseRecorder
		for range 3 {
			rec = httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "198.51.100.9:4312"
			h.ServeHTTP(rec, r)
		}

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded","code":"RATE_LIMITED"}`, rec.Body.String())
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		t.Parallel()

		h := middleware.RateLimit(newLimiter(t, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.RemoteAddr = "198.51.100.1:1000"
		second := httptest.NewRequest(http.MethodGet, "/", nil)
		second.RemoteAddr = "198.51.100.2:1000"

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, first)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
