package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "http://sproxy.internal:3128", "")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/page", nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("http proxy = %v, want proxy.internal:3128", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://example.com/page", nil)
	u, err = fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "sproxy.internal:3128" {
		t.Errorf("https proxy = %v, want sproxy.internal:3128", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "example.com, intranet.local")

	cases := []struct {
		url    string
		bypass bool
	}{
		{"http://example.com/page", true},
		{"http://sub.example.com/page", true},
		{"http://notexample.com/page", false},
		{"http://intranet.local/wiki", true},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, tc.url, nil)
		u, err := fn(req)
		if err != nil {
			t.Fatalf("proxy func for %s: %v", tc.url, err)
		}
		if bypassed := u == nil; bypassed != tc.bypass {
			t.Errorf("%s: bypass = %v, want %v", tc.url, bypassed, tc.bypass)
		}
	}
}
