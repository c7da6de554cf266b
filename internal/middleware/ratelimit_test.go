package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonhub/internal/domain"
)

func rateLimited(cfg RateLimitConfig) http.Handler {
	return RateLimiter(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func asUser(userID, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
	req.RemoteAddr = remoteAddr
	if userID != "" {
		req = req.WithContext(domain.WithPrincipal(req.Context(), domain.ContextPrincipal{UserID: userID}))
	}
	return req
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	handler := rateLimited(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, asUser("stylist-1", "10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	handler := rateLimited(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, asUser("stylist-1", "10.0.0.1:1234"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asUser("stylist-1", "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.InDelta(t, float64(429), body["code"], 0.001)
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimiter_PrincipalsShareAnAddressNotABucket(t *testing.T) {
	handler := rateLimited(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	// Two stylists behind the same salon router. One exhausting their
	// bucket must not throttle the other.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, asUser("stylist-1", "10.0.0.1:1234"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asUser("stylist-1", "10.0.0.1:5678"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, asUser("stylist-2", "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, rec.Code, "colleague on the same address must keep their own bucket")
}

func TestRateLimiter_AnonymousFallsBackToAddress(t *testing.T) {
	handler := rateLimited(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, asUser("", "10.0.0.1:1234"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Same address, new port: still the same bucket.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asUser("", "10.0.0.1:9999"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different address is unaffected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, asUser("", "10.0.0.2:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimitKey(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		remoteAddr string
		xff        string
		want       string
	}{
		{
			name:       "principal wins over address",
			userID:     "stylist-1",
			remoteAddr: "192.168.1.1:12345",
			want:       "user:stylist-1",
		},
		{
			name:       "IPv4 with port",
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1",
		},
		{
			name:       "IPv6 with port",
			remoteAddr: "[::1]:12345",
			want:       "::1",
		},
		{
			name:       "X-Forwarded-For is ignored",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50",
			want:       "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(tt.userID, tt.remoteAddr)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, limitKey(req))
		})
	}
}
