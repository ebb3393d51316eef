package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 5 * time.Minute

// KeyFunc extracts the rate limiting key from a request.
type KeyFunc func(*http.Request) string

// RemoteIP keys requests by client IP. Run chi's RealIP middleware first when
// behind a proxy.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimiter is a token bucket per request key.
type RateLimiter struct {
	mu        sync.Mutex
	perSecond rate.Limit
	burst     int
	key       KeyFunc
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perSecond requests per key with the given burst.
// A nil key defaults to RemoteIP.
func NewRateLimiter(perSecond float64, burst int, key KeyFunc) *RateLimiter {
	if key == nil {
		key = RemoteIP
	}
	return &RateLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		key:       key,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

// Allow reports whether a request for key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.perSecond, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429. A limiter with a
// non-positive rate lets everything through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l.perSecond <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		if key == "" {
			key = "unknown"
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "1")
			_ = WriteJSON(w, http.StatusTooManyRequests, &errorResponse{
				ErrMsg:     "rate limit exceeded",
				ErrMsgCode: http.StatusTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
