package limiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestMiddlewareLimitsPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Limit(0.001), 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000"))
	assert.Equal(t, 2, l.Len())
}

func TestRemoveIdleDropsFullBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Limit(1000), 1)
	l.GetLimiter("a").Allow()
	l.GetLimiter("b")

	removed, remaining := l.removeIdle(time.Now().Add(time.Second))
	assert.Equal(t, 2, removed)
	assert.Zero(t, remaining)
}
