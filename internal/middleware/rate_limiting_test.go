package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type testRateLimiter struct {
	allowed map[string]int
	perKey  int
	err     error
}

func (l *testRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.allowed[key] >= l.perKey {
		return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: time.Second}, nil
	}
	l.allowed[key]++
	return &redis_rate.Result{Limit: limit, Allowed: 1}, nil
}

func TestRateLimit(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &testRateLimiter{allowed: map[string]int{}, perKey: 2}
	handler := RateLimit(limiter, "sensor", 2, metricsManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/sensor/steps", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	// separate bucket per user
	assert.Equal(t, http.StatusOK, send("u2"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimited))
	assert.Equal(t, 2, limiter.allowed["sensor||u1"])
}

func TestRateLimit_LimiterError(t *testing.T) {
	limiter := &testRateLimiter{err: errors.New("redis down")}
	called := false
	handler := RateLimit(limiter, "sensor", 2, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sensor/steps", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, called)
}
