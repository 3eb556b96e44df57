package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
)

const msgRateLimited = "Rate limit exceeded. Try again later."

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RateLimiter token bucket на клиента: по X-User-ID, иначе по IP
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	ttl    time.Duration
	logger Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	lastGC   time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает лимитер. Неактивные клиенты забываются через ttl.
func NewRateLimiter(requestsPerSecond float64, burst int, ttl time.Duration, logger Logger) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
		ttl:      ttl,
		logger:   logger,
		limiters: make(map[string]*clientLimiter),
	}
}

// Middleware отвечает 429, когда клиент исчерпал лимит
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.allow(key, time.Now()) {
			l.logger.Warn("%s %s - Rate limit exceeded: client=%s", r.Method, r.URL.Path, key)
			w.Header().Set("Retry-After", "1")
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.ttl {
		for k, c := range l.limiters {
			if now.Sub(c.lastSeen) > l.ttl {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	c, ok := l.limiters[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	if raw := r.Header.Get(UserIDHeader); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return "user:" + strconv.FormatInt(id, 10)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
