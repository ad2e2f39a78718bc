package worker

import (
	"context"
	"testing"
)

func TestNewLimiter_DefaultBurst(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected fallback burst 5 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiter_WaitPerHost(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://example.com/earnings"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://other.example.org/post"); err != nil {
		t.Errorf("wait on second host failed: %v", err)
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://example.com/a") {
		t.Error("first request to a host should pass")
	}
	if limiter.Allow("https://example.com/b") {
		t.Error("second immediate request to the same host should be denied")
	}
	if !limiter.Allow("https://other.com/a") {
		t.Error("a different host has its own bucket")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("slow.example.com", 0.1, 1)

	if !limiter.Allow("https://slow.example.com/page") {
		t.Error("burst token should admit the first request")
	}
	if limiter.Allow("https://slow.example.com/page2") {
		t.Error("throttled host should deny the second request")
	}
	if !limiter.Allow("https://fast.example.com/page") {
		t.Error("other hosts keep the default rate")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("https://example.com/ir/q3")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}
	if _, err := hostOf("::bad"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
