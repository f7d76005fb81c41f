// file: internal/cache/cache_test.go
// version: 1.0.0
// guid: b3c4d5e6-f7a8-9b0c-1d2e-3f4a5b6c7d8e

package cache

import (
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("miss reported as hit")
	}

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = (%q, %v)", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute)
	c.SetWithTTL("k", 42, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still readable")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[int](0)
	c.Set("k", 7)
	time.Sleep(10 * time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != 7 {
		t.Errorf("zero-TTL entry expired: (%d, %v)", v, ok)
	}
}

func TestGetOrFill(t *testing.T) {
	c := New[string](time.Minute)
	calls := 0
	fill := func() string {
		calls++
		return "filled"
	}

	if v := c.GetOrFill("k", fill); v != "filled" {
		t.Errorf("GetOrFill = %q", v)
	}
	if v := c.GetOrFill("k", fill); v != "filled" {
		t.Errorf("GetOrFill = %q", v)
	}
	if calls != 1 {
		t.Errorf("fill ran %d times, want 1", calls)
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated key still readable")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("unrelated key removed")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("Len after InvalidateAll = %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n)
				c.Get("shared")
			}
		}(i)
	}
	wg.Wait()
}
