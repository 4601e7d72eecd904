package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimiterPerIP(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(0.5), Burst: 2})
	t.Cleanup(rl.Stop)
	h := rl.Middleware(ok())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1:5000"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.2:5000"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiterCleanup(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1, CleanupInterval: time.Minute})
	t.Cleanup(rl.Stop)

	rl.limiter("10.0.0.1")
	rl.cleanup(time.Now())
	assert.Equal(t, 1, rl.Len())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.Len())
}

func TestPerMinute(t *testing.T) {
	t.Parallel()
	cfg := PerMinute(30, 5)
	assert.Equal(t, rate.Limit(0.5), cfg.Rate)
	assert.Equal(t, 5, cfg.Burst)
}
