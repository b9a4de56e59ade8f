// ratelimit_test.go — Unit tests for the limiter with an in-memory store.
package ratelimit

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for tests. TTLs are recorded, not enforced.
type memStore struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func TestCheckSubtitleOps_AllowsUpToLimit(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		allowed, _ := l.CheckSubtitleOps(ctx, "viewer-1")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	allowed, retry := l.CheckSubtitleOps(ctx, "viewer-1")
	if allowed {
		t.Error("request 31 should be rejected")
	}
	if retry < 1 {
		t.Errorf("retryAfter = %d; want ≥ 1", retry)
	}
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		l.CheckSubtitleOps(ctx, "viewer-1")
	}
	if allowed, _ := l.CheckSubtitleOps(ctx, "viewer-2"); !allowed {
		t.Error("a different key should not share the counter")
	}
}

func TestNilStore_AlwaysAllows(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if allowed, _ := l.CheckProgressWrites(ctx, "viewer-1"); !allowed {
			t.Fatal("nil store must never reject")
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5432", "", "", "10.0.0.1"},
		{"x-forwarded-for first hop", "10.0.0.1:5432", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:5432", "", "203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q; want %q", got, tt.want)
			}
		})
	}
}
