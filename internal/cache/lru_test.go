package cache

import (
	"testing"
	"time"
)

func TestLRUCacheBasics(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used; adding "c" evicts it.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a retained")
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("k", 42)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to be gone")
	}
	c.Set("again", 1)
	if cleaned := c.CleanExpired(); cleaned != 0 {
		t.Errorf("CleanExpired = %d, want 0 fresh entries removed", cleaned)
	}
}

func TestLRUCacheFlush(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Flush()

	if c.Size() != 0 {
		t.Errorf("Size after flush = %d, want 0", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected flushed entry to be gone")
	}

	// The cache stays usable after a flush.
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after flush = %v, %v", v, ok)
	}
}
