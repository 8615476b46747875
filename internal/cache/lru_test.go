package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4") // evicts key1

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, key := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should still exist", key)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
}

func TestLRUCacheRecentUseProtectsFromEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recent
	c.Set("c", 3) // evicts b

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Error("a should have been protected by the recent Get")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string](10, 20*time.Millisecond)

	c.Set("key", "value")
	if _, found := c.Get("key"); !found {
		t.Fatal("expected fresh entry")
	}

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("key"); found {
		t.Fatal("expected expired entry to miss")
	}

	c.Set("other", "value")
	time.Sleep(30 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", cleaned)
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[string](10, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Purge()

	if c.Size() != 0 {
		t.Errorf("expected empty cache, got size %d", c.Size())
	}
	if _, found := c.Get("a"); found {
		t.Error("purged entry should miss")
	}

	// The cache stays usable after a purge.
	c.Set("c", "3")
	if _, found := c.Get("c"); !found {
		t.Error("expected entry set after purge")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Hour)
	c.Set("a", "1")
	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("deleted entry should miss")
	}
	c.Delete("missing") // no-op
}
