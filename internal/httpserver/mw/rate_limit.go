package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/utils"
)

// RejectReason tells why the limiter turned a redirect request away.
type RejectReason string

const (
	// RejectExhausted: the client spent its burst and the bucket has not refilled yet.
	RejectExhausted RejectReason = "exhausted"
	// RejectCapacity: the client table is full and no idle client could be evicted.
	RejectCapacity RejectReason = "capacity"
)

// RateLimitConfig throttles redirect lookups per client IP. Every request on "/"
// costs one Sheets round-trip, so each client gets a token bucket of Burst
// requests refilled at RefillPerIPPerMin. A Burst of 0 disables the limiter.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int

	// MaxEntries caps the number of tracked clients; 0 means unbounded.
	MaxEntries    int
	SweepInterval time.Duration
	IdleTTL       time.Duration

	TrustProxy bool

	// OnReject is called once per rejected request.
	OnReject func(ip string, reason RejectReason)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Enabled reports whether the limiter should be installed at all.
func (c RateLimitConfig) Enabled() bool {
	return c.Burst > 0
}

type clientBucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	seen     time.Time
}

type verdict struct {
	allowed    bool
	remaining  int
	retryAfter int
	reason     RejectReason
}

type ipLimiter struct {
	cfg      RateLimitConfig
	perSec   float64
	capacity float64

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *ipLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ipLimiter{
		cfg:       cfg,
		perSec:    float64(cfg.RefillPerIPPerMin) / 60.0,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*clientBucket, 1024),
		lastSweep: cfg.Now(),
	}
}

// bucketFor returns the client's bucket, or nil when a new client cannot be tracked.
func (l *ipLimiter) bucketFor(ip string, now time.Time) *clientBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.evictIdleLocked(now)
	}

	if b := l.clients[ip]; b != nil {
		return b
	}
	if l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries {
		l.evictIdleLocked(now)
		if len(l.clients) >= l.cfg.MaxEntries {
			return nil
		}
	}

	b := &clientBucket{tokens: l.capacity, refilled: now, seen: now}
	l.clients[ip] = b
	return b
}

func (l *ipLimiter) evictIdleLocked(now time.Time) {
	for ip, b := range l.clients {
		if now.Sub(b.seen) > l.cfg.IdleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) take(ip string) verdict {
	now := l.cfg.Now()

	b := l.bucketFor(ip, now)
	if b == nil {
		retry := int(l.cfg.IdleTTL.Seconds())
		return verdict{retryAfter: max(retry, 1), reason: RejectCapacity}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSec)
		b.refilled = now
	}
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return verdict{allowed: true, remaining: int(math.Floor(b.tokens))}
	}

	retry := int(math.Ceil((1 - b.tokens) / l.perSec))
	return verdict{retryAfter: max(retry, 1), reason: RejectExhausted}
}

// RateLimit rejects over-budget clients with 429 before the redirect handler
// fetches anything upstream. Rate headers are set on every response.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, l.cfg.TrustProxy)
			v := l.take(ip)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))

			if !v.allowed {
				if l.cfg.OnReject != nil {
					l.cfg.OnReject(ip, v.reason)
				}
				h.Set("Retry-After", strconv.Itoa(v.retryAfter))
				http.Error(w, "⏳ Too many requests, retry in "+strconv.Itoa(v.retryAfter)+"s", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
