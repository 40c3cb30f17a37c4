package cache

import (
	"testing"
	"time"
)

func put(c *TTLCache[string, int], key string, value int) {
	c.Modify(key, func(_ int, _ bool) int { return value })
}

func TestTTLCacheModifyCounts(t *testing.T) {
	c := NewTTLCache[string, int](4, time.Minute)

	count, ok := c.Modify("k", func(current int, exists bool) int {
		if exists {
			t.Fatalf("expected first insert")
		}
		return current + 1
	})
	if !ok || count != 1 {
		t.Fatalf("unexpected first modify: %d %v", count, ok)
	}

	count, ok = c.Modify("k", func(current int, exists bool) int {
		if !exists {
			t.Fatalf("expected existing entry")
		}
		return current + 1
	})
	if !ok || count != 2 {
		t.Fatalf("unexpected second modify: %d %v", count, ok)
	}

	if value, ok := c.Get("k"); !ok || value != 2 {
		t.Fatalf("unexpected get: %d %v", value, ok)
	}
}

func TestTTLCacheEvictsOldest(t *testing.T) {
	c := NewTTLCache[string, int](2, time.Minute)
	put(c, "a", 1)
	put(c, "b", 2)
	put(c, "c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected key 'a' to be evicted")
	}
	if value, ok := c.Get("c"); !ok || value != 3 {
		t.Fatalf("expected key 'c' to remain")
	}
	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
}

func TestTTLCacheExpiredEntryResets(t *testing.T) {
	c := NewTTLCache[string, int](2, 20*time.Millisecond)
	put(c, "a", 5)
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected key 'a' to expire")
	}

	// 만료 후 Modify 는 빈 카운터에서 다시 시작한다
	count, ok := c.Modify("a", func(current int, _ bool) int { return current + 1 })
	if !ok || count != 1 {
		t.Fatalf("expected counter reset, got %d %v", count, ok)
	}
}
