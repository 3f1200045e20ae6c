package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"navshell/internal/platform/metrics"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis unavailable")
}

func TestLoginMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	login := func(h http.Handler, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("throttles per address", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		h := New(NewInMemoryStore(), 2, time.Minute, logger, WithMetrics(m)).Login(ok)

		assert.Equal(t, http.StatusOK, login(h, "192.0.2.1:5000").Code)
		rr := login(h, "192.0.2.1:5001")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		rr = login(h, "192.0.2.1:5002")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Contains(t, rr.Body.String(), `"error":"rate_limit_exceeded"`)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("throttled")))

		assert.Equal(t, http.StatusOK, login(h, "192.0.2.9:5000").Code)
	})

	t.Run("fails open when the limiter errors", func(t *testing.T) {
		h := New(failingLimiter{}, 1, time.Minute, logger).Login(ok)
		assert.Equal(t, http.StatusOK, login(h, "192.0.2.1:5000").Code)
		assert.Equal(t, http.StatusOK, login(h, "192.0.2.1:5000").Code)
	})
}
