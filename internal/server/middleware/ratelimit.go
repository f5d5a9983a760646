package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/jobtrail/pkg/api"
)

// RateLimiter ограничивает число запросов на ключ (обычно IP) в окне window.
// Бакет пополняется целиком по истечении окна.
type RateLimiter struct {
	now      func() time.Time
	buckets  map[string]*bucket
	cleanupC chan struct{}
	rate     int
	window   time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

type bucket struct {
	lastRefill time.Time
	tokens     int
}

// NewRateLimiter creates a limiter allowing rate requests per window and
// starts the goroutine that drops idle buckets. Call Stop to release it.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		now:      time.Now,
		buckets:  make(map[string]*bucket),
		cleanupC: make(chan struct{}),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdle()
		case <-rl.cleanupC:
			return
		}
	}
}

// dropIdle удаляет бакеты, не пополнявшиеся дольше двух окон
func (rl *RateLimiter) dropIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
	}
}

// Stop останавливает фоновую очистку
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow reports whether one more request for key fits into the current window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.lastRefill) >= rl.window {
		b = &bucket{tokens: rl.rate, lastRefill: now}
		rl.buckets[key] = b
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit rejects requests over the limiter budget with 429
func RateLimit(limiter *RateLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					slog.String("ip", key),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				api.WriteError(w, http.StatusTooManyRequests, api.ErrorResponse{
					Message: "rate limit exceeded, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берет первый адрес из X-Forwarded-For, затем X-Real-IP, затем
// RemoteAddr без порта
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
