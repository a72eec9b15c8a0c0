/*
Package limiter provides per-client-IP request rate limiting.

Each IP gets its own token bucket (rate.Limiter). A background sweep drops buckets that have
refilled completely, so idle clients do not accumulate in memory.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/resp"
)

const sweepInterval = 3 * time.Minute

// IPRateLimiter limits requests per client IP address.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
}

// NewIPRateLimiter creates a limiter allowing r events per second with burst b per IP.
// The sweep goroutine runs until ctx is cancelled.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.sweep(ctx)

	return i
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if limiter, exists = i.limits[ip]; !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}
	return limiter
}

// Len reports how many IPs currently hold a bucket.
func (i *IPRateLimiter) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.limits)
}

func (i *IPRateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, remaining := i.removeIdle(now)
			logx.Debug("Rate limiter sweep finished", "removed", removed, "remaining", remaining)
		}
	}
}

// removeIdle drops every bucket that is full at now.
func (i *IPRateLimiter) removeIdle(now time.Time) (removed, remaining int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			removed++
		}
	}
	return removed, len(i.limits)
}

// Middleware rejects requests over the limit with ErrRateLimitExceeded (HTTP 429).
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !i.GetLimiter(ip).Allow() {
			logx.Warn("Request rejected: rate limit exceeded", "path", r.URL.Path)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
