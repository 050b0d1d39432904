package server

import (
	"net"
	"net/http/httptest"
	"testing"
)

func TestClientIPFromRequest_UntrustedProxyIgnoresForwarded(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.com", nil)
	req.RemoteAddr = "198.51.100.10:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")

	trusted := newProxyMatcher([]string{"203.0.113.1"}, nil)
	got := clientIPFromRequest(req, trusted)
	want := net.ParseIP("198.51.100.10")

	if got == nil || !got.Equal(want) {
		t.Fatalf("clientIP=%v, want %v", got, want)
	}
}

func TestClientIPFromRequest_TrustedProxyRightMostUntrusted(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.com", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.11, 192.0.2.20")

	trusted := newProxyMatcher([]string{"203.0.113.0/24"}, nil)
	got := clientIPFromRequest(req, trusted)
	want := net.ParseIP("192.0.2.20")

	if got == nil || !got.Equal(want) {
		t.Fatalf("clientIP=%v, want %v", got, want)
	}
}

func TestProxyMatcherSkipsInvalidEntries(t *testing.T) {
	if m := newProxyMatcher([]string{"", "not-an-ip", "10.0.0.0/99"}, nil); m != nil {
		t.Fatalf("matcher = %+v, want nil", m)
	}
	m := newProxyMatcher([]string{"bogus", "10.0.0.0/8"}, nil)
	if !m.IsTrusted(net.ParseIP("10.1.2.3")) {
		t.Fatal("10.1.2.3 should be trusted")
	}
	if m.IsTrusted(net.ParseIP("11.0.0.1")) {
		t.Fatal("11.0.0.1 should not be trusted")
	}
	var none *proxyMatcher
	if none.IsTrusted(net.ParseIP("10.1.2.3")) {
		t.Fatal("nil matcher trusts nothing")
	}
}

func TestRequestOrigin(t *testing.T) {
	trusted := newProxyMatcher([]string{"10.0.0.1"}, nil)

	tests := []struct {
		name   string
		remote string
		proto  string
		host   string
		want   string
	}{
		{"direct", "198.51.100.1:5000", "", "", "http://site.test"},
		{"untrusted headers ignored", "198.51.100.1:5000", "https", "evil.test", "http://site.test"},
		{"trusted proxy", "10.0.0.1:5000", "https", "openheavens.pt", "https://openheavens.pt"},
		{"trusted proxy list", "10.0.0.1:5000", "HTTPS, http", "", "https://site.test"},
		{"bad proto", "10.0.0.1:5000", "ftp", "", "http://site.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://site.test/ws", nil)
			req.RemoteAddr = tt.remote
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.host != "" {
				req.Header.Set("X-Forwarded-Host", tt.host)
			}
			if got := requestOrigin(req, trusted); got != tt.want {
				t.Fatalf("requestOrigin = %q, want %q", got, tt.want)
			}
		})
	}
}
