package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedCache(ttlSeconds int) (*InMemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewInMemoryCache(ttlSeconds)
	c.now = clock.Now
	return c, clock
}

func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	if _, ok := c.Get(ctx, "nonexistent"); ok {
		t.Error("Expected miss for nonexistent key")
	}

	if err := c.Set(ctx, "key1", "สวัสดี"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get(ctx, "key1")
	if !ok {
		t.Error("Expected hit for key1")
	}
	if val != "สวัสดี" {
		t.Errorf("Expected 'สวัสดี', got %q", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedCache(60)

	c.Set(ctx, "key1", "สวัสดี")

	clock.Advance(59 * time.Second)
	if _, ok := c.Get(ctx, "key1"); !ok {
		t.Error("Expected hit before TTL expires")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("Expected miss after TTL expires")
	}
	if c.Len() != 0 {
		t.Error("Expired entry should be removed on read")
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedCache(0)

	c.Set(ctx, "key1", "สวัสดี")
	clock.Advance(365 * 24 * time.Hour)

	if _, ok := c.Get(ctx, "key1"); !ok {
		t.Error("Expected entries without TTL to never expire")
	}
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	c.Set(ctx, "key1", "value1")
	c.Set(ctx, "key1", "value2")

	val, _ := c.Get(ctx, "key1")
	if val != "value2" {
		t.Errorf("Expected 'value2', got %q", val)
	}
}

func TestInMemoryCache_KeysAndPrune(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedCache(60)

	c.Set(ctx, "b:th", "2")
	c.Set(ctx, "a:th", "1")
	clock.Advance(45 * time.Second)
	c.Set(ctx, "c:th", "3")
	clock.Advance(30 * time.Second)

	keys, err := c.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "c:th" {
		t.Errorf("Expected only the live key, got %v", keys)
	}

	if c.Len() != 3 {
		t.Errorf("Len counts expired entries, expected 3, got %d", c.Len())
	}
	if removed := c.Prune(); removed != 2 {
		t.Errorf("Expected 2 pruned, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry after prune, got %d", c.Len())
	}
}

func TestInMemoryCache_KeysSorted(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)
	for _, k := range []string{"c", "a", "b"} {
		c.Set(ctx, k, k)
	}

	keys, _ := c.Keys(ctx)
	if fmt.Sprint(keys) != "[a b c]" {
		t.Errorf("Expected sorted keys, got %v", keys)
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	c.Set(ctx, "key1", "value1")
	c.Set(ctx, "key2", "value2")
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(ctx, fmt.Sprintf("key%d", n), "value")
		}(i)
		go func(n int) {
			defer wg.Done()
			c.Get(ctx, fmt.Sprintf("key%d", n))
		}(i)
	}
	wg.Wait()

	if c.Len() != 100 {
		t.Errorf("Expected 100 entries, got %d", c.Len())
	}
}
