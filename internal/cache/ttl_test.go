package cache

import (
	"testing"
	"time"
)

func TestTTLGetPut(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	c := NewTTL[string, float64](30*time.Second, clock)

	c.Put("price:42161:usdc", 1.0)
	got, ok := c.Get("price:42161:usdc")
	if !ok || got != 1.0 {
		t.Fatalf("expected cached value, got %v ok=%v", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	c := NewTTL[string, int](10*time.Second, clock)

	c.Put("k", 7)
	now = now.Add(11 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", c.Len())
	}
}

func TestTTLInvalidateAndReset(t *testing.T) {
	c := NewTTL[string, int](time.Minute, nil)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("invalidated key should miss")
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("reset should drop everything, len=%d", c.Len())
	}
}
