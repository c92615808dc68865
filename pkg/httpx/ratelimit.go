package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit is a token bucket expressed as requests per window.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Default profiles. The config layer overrides Requests and Burst from
// LOGIN_RATE_LIMIT (strict) and REFRESH_RATE_LIMIT (moderate).
var (
	// StrictLimit guards credential endpoints against brute force.
	StrictLimit = RateLimit{Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards cookie-driven endpoints (refresh, logout).
	ModerateLimit = RateLimit{Requests: 20, Window: time.Minute, Burst: 20}
)

func (l RateLimit) perSecond() rate.Limit {
	if l.Window <= 0 || l.Requests <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// KeyFunc groups requests into buckets. An empty key bypasses the limiter.
type KeyFunc func(*http.Request) string

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormField keys on a form value, e.g. the login username. It parses the
// form, which the handler then reads from r.Form without touching the body.
func FormField(name string) KeyFunc {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(r.FormValue(name)))
	}
}

// Composite joins the non-empty keys of each KeyFunc.
func Composite(keys ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := k(r); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, "|")
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per key. Buckets idle for longer than
// idleTTL are swept lazily on access.
type Limiter struct {
	limit   RateLimit
	key     KeyFunc
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter returns a limiter for limit keyed by key.
func NewLimiter(limit RateLimit, key KeyFunc) *Limiter {
	return &Limiter{
		limit:     limit,
		key:       key,
		idleTTL:   max(5*time.Minute, 2*limit.Window),
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request for key may proceed and, if not, how
// long the caller should wait.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit.perSecond(), max(l.limit.Burst, 1))}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.key(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, delay := l.Allow(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit.Requests))
			w.Header().Set("X-RateLimit-Window", l.limit.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(limit RateLimit) Middleware {
	return NewLimiter(limit, ClientIP).Middleware()
}

// RateLimitByIPAndFormField limits by client address plus a form field,
// so one attacker cannot lock out every account behind a shared NAT.
func RateLimitByIPAndFormField(limit RateLimit, field string) Middleware {
	return NewLimiter(limit, Composite(ClientIP, FormField(field))).Middleware()
}
