package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tripcost/travelcost/internal/config"
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket: capacity requests per window, with
// tokens refilled evenly across the window.
type RateLimiter struct {
	mu          sync.Mutex
	capacity    int
	window      time.Duration
	every       rate.Limit
	maxBuckets  int
	clients     map[string]*clientBucket
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter starts a limiter and its cleanup goroutine. Call Stop to
// release it.
func NewRateLimiter(capacity int, window time.Duration, maxBuckets int) *RateLimiter {
	rl := &RateLimiter{
		capacity:    capacity,
		window:      window,
		every:       rate.Every(window / time.Duration(capacity)),
		maxBuckets:  maxBuckets,
		clients:     make(map[string]*clientBucket),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(config.DefaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, bucket := range rl.clients {
		if now.Sub(bucket.lastSeen) > config.DefaultStaleTimeout {
			delete(rl.clients, ip)
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.allowAt(ip, time.Now())
}

func (rl *RateLimiter) allowAt(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.clients[ip]
	if !exists {
		if len(rl.clients) >= rl.maxBuckets {
			// Table full: evict buckets idle for a whole window (they are
			// full again anyway), and refuse if none were.
			for k, b := range rl.clients {
				if now.Sub(b.lastSeen) > rl.window {
					delete(rl.clients, k)
				}
			}
			if len(rl.clients) >= rl.maxBuckets {
				return false
			}
		}
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.every, rl.capacity)}
		rl.clients[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler, onReject func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			if onReject != nil {
				onReject()
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(rl.window.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "rate_limited", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the connection's remote host. X-Forwarded-For is ignored
// because the server is not deployed behind a trusted proxy by default.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// isLoopback reports whether a request came from this machine.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
