package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{host: "go.example.com", pattern: "go.example.com", want: true},
		{host: "go.example.com", pattern: "*.example.com", want: true},
		{host: "example.com", pattern: "*.example.com", want: false},
		{host: "evil-example.com", pattern: "*.example.com", want: false},
		{host: "other.com", pattern: "go.example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"_"+tt.pattern, func(t *testing.T) {
			if got := matchHost(tt.host, tt.pattern); got != tt.want {
				t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{name: "passthrough when empty", allowed: nil, host: "anything", want: http.StatusOK},
		{name: "port ignored", allowed: []string{"go.example.com"}, host: "go.example.com:8080", want: http.StatusOK},
		{name: "case insensitive", allowed: []string{"Go.Example.com"}, host: "GO.example.COM", want: http.StatusOK},
		{name: "rejected", allowed: []string{"go.example.com"}, host: "other.example.com", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := EnforceHost(tt.allowed, logger.Nop())(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		remoteAddr string
		xff        string
		trustProxy bool
		want       int
	}{
		{name: "passthrough when empty", remoteAddr: "203.0.113.9:1234", want: http.StatusOK},
		{name: "cidr match", allowed: []string{"10.0.0.0/8"}, remoteAddr: "10.1.2.3:1234", want: http.StatusOK},
		{name: "exact ip match", allowed: []string{"192.0.2.1"}, remoteAddr: "192.0.2.1:1234", want: http.StatusOK},
		{name: "rejected", allowed: []string{"10.0.0.0/8"}, remoteAddr: "203.0.113.9:1234", want: http.StatusForbidden},
		{name: "forwarded for trusted", allowed: []string{"10.0.0.0/8"}, remoteAddr: "127.0.0.1:1234", xff: "10.9.9.9, 127.0.0.1", trustProxy: true, want: http.StatusOK},
		{name: "forwarded for ignored", allowed: []string{"10.0.0.0/8"}, remoteAddr: "127.0.0.1:1234", xff: "10.9.9.9", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/infra", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"Cache-Control":     "no-store, no-cache, must-revalidate, max-age=0",
		"Pragma":            "no-cache",
		"Expires":           "0",
		"Surrogate-Control": "no-store",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestLimiterTake(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60, Now: clock.Now})

	if v := l.take("1.2.3.4"); !v.allowed || v.remaining != 1 {
		t.Fatalf("first request = %+v, want allowed with 1 remaining", v)
	}
	if v := l.take("1.2.3.4"); !v.allowed || v.remaining != 0 {
		t.Fatalf("second request = %+v, want allowed with 0 remaining", v)
	}
	v := l.take("1.2.3.4")
	if v.allowed {
		t.Fatal("third request should be limited")
	}
	if v.reason != RejectExhausted || v.retryAfter != 1 {
		t.Errorf("verdict = %+v, want exhausted with retry 1", v)
	}
	if v := l.take("5.6.7.8"); !v.allowed {
		t.Error("other client should have its own bucket")
	}

	clock.Advance(time.Second)
	if v := l.take("1.2.3.4"); !v.allowed {
		t.Error("bucket should refill one token per second")
	}
}

func TestLimiterCapacity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	l := newLimiter(RateLimitConfig{
		Burst:             5,
		RefillPerIPPerMin: 60,
		MaxEntries:        1,
		IdleTTL:           time.Minute,
		Now:               clock.Now,
	})

	if v := l.take("1.1.1.1"); !v.allowed {
		t.Fatal("first client should be tracked")
	}
	v := l.take("2.2.2.2")
	if v.allowed || v.reason != RejectCapacity {
		t.Fatalf("second client = %+v, want rejected for capacity", v)
	}
	if v.retryAfter != 60 {
		t.Errorf("retry after = %d, want 60", v.retryAfter)
	}
	if v := l.take("1.1.1.1"); !v.allowed {
		t.Error("known client keeps its bucket when the table is full")
	}

	clock.Advance(2 * time.Minute)
	if v := l.take("2.2.2.2"); !v.allowed {
		t.Error("idle client should be evicted to make room")
	}
}

func TestRateLimit(t *testing.T) {
	var reasons []RejectReason
	var ips []string
	h := RateLimit(RateLimitConfig{
		Burst:             1,
		RefillPerIPPerMin: 1,
		OnReject: func(ip string, reason RejectReason) {
			ips = append(ips, ip)
			reasons = append(reasons, reason)
		},
	})(okHandler)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.4:4000"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Header().Get("X-RateLimit-Limit") != "1" {
			t.Errorf("request %d: missing X-RateLimit-Limit header", i)
		}
		if rec.Header().Get("X-RateLimit-Remaining") != "0" {
			t.Errorf("request %d: X-RateLimit-Remaining = %q, want 0", i, rec.Header().Get("X-RateLimit-Remaining"))
		}
		if i == 1 && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
	if len(reasons) != 1 || reasons[0] != RejectExhausted {
		t.Errorf("OnReject reasons = %v, want [exhausted]", reasons)
	}
	if len(ips) != 1 || ips[0] != "198.51.100.4" {
		t.Errorf("OnReject ips = %v, want [198.51.100.4]", ips)
	}
}

func TestRateLimitConfigEnabled(t *testing.T) {
	if (RateLimitConfig{}).Enabled() {
		t.Error("zero burst should disable the limiter")
	}
	if !(RateLimitConfig{Burst: 5}).Enabled() {
		t.Error("positive burst should enable the limiter")
	}
}
