package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestMiddlewareLimitsPerClient(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2, time.Minute, nil)
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/load", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := send("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:   "no proxies configured trusts forwarding header",
			remote: "10.0.0.1:5000",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
			},
			want: "203.0.113.7",
		},
		{
			name:    "untrusted peer ignores header",
			trusted: []string{"192.168.0.0/16"},
			remote:  "10.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:    "10.0.0.1",
		},
		{
			name:    "trusted single ip uses real ip header",
			trusted: []string{"10.0.0.1"},
			remote:  "10.0.0.1:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.2"},
			want:    "198.51.100.2",
		},
		{
			name:   "garbage header falls back to peer",
			remote: "10.0.0.9:5000",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
			},
			want: "10.0.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewIPRateLimiter(rate.Limit(1), 1, time.Minute, tt.trusted)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := l.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
