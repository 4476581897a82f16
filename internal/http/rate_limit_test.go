package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-metrics/internal/shared/configs"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(configs.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}, nil)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimiter_Refills(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)
	rl := newRateLimiter(configs.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, func() time.Time { return now })

	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))

	now = now.Add(time.Second)
	assert.True(t, rl.allow("a"))
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)
	rl := newRateLimiter(configs.RateLimitConfig{RequestsPerSecond: 10, Burst: 10, IdleTTLSeconds: 60}, func() time.Time { return now })

	rl.allow("idle")
	now = now.Add(2 * time.Minute)
	rl.lookups = cleanupEvery - 1
	rl.allow("fresh")

	assert.Equal(t, 1, rl.size())
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{name: "peer address", remoteAddr: "192.0.2.1:1234", expected: "192.0.2.1"},
		{name: "ipv6 peer", remoteAddr: "[2001:db8::1]:443", expected: "2001:db8::1"},
		{name: "forwarded first hop", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.7, 10.0.0.1", expected: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set(headerForwardedFor, tt.forwarded)
			}
			assert.Equal(t, tt.expected, clientIP(r))
		})
	}
}
