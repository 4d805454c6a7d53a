// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package cache

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests expire entries without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestLRU(capacity int, ttl time.Duration) (*LRU[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[string, int](capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRU_BasicOperations(t *testing.T) {
	cache, _ := newTestLRU(3, time.Minute)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, found := cache.Get(key)
		if !found || got != want {
			t.Errorf("Get(%q) = %d, %v; want %d, true", key, got, found, want)
		}
	}

	if cache.Len() != 3 {
		t.Errorf("Expected len 3, got %d", cache.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	cache, _ := newTestLRU(3, time.Minute)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	// Access 'a' to make it most recently used
	cache.Get("a")

	// Should evict 'b' (least recently used)
	cache.Add("d", 4)

	if _, found := cache.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	cache, clock := newTestLRU(10, 50*time.Millisecond)

	cache.Add("a", 1)
	if _, found := cache.Get("a"); !found {
		t.Error("Expected to find key 'a' immediately")
	}

	clock.Advance(60 * time.Millisecond)

	if _, found := cache.Get("a"); found {
		t.Error("Expected key 'a' to be expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be dropped on Get, len = %d", cache.Len())
	}
}

func TestLRU_RemoveIf(t *testing.T) {
	cache, _ := newTestLRU(10, time.Minute)

	cache.Add("user:1:a", 1)
	cache.Add("user:2:a", 2)
	cache.Add("user:1:b", 3)

	removed := cache.RemoveIf(func(k string) bool { return strings.HasPrefix(k, "user:1:") })
	if removed != 2 {
		t.Errorf("RemoveIf() removed %d, want 2", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("len after RemoveIf = %d, want 1", cache.Len())
	}
	if _, found := cache.Get("user:2:a"); !found {
		t.Error("unmatched entry should survive RemoveIf")
	}

	// The list must stay consistent for later evictions.
	cache.Add("x", 4)
	cache.Add("y", 5)
	if cache.Len() != 3 {
		t.Errorf("len = %d, want 3", cache.Len())
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	cache, clock := newTestLRU(10, 50*time.Millisecond)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	clock.Advance(60 * time.Millisecond)
	cache.Add("d", 4)

	if removed := cache.CleanupExpired(); removed != 3 {
		t.Errorf("Expected 3 expired items removed, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 item remaining, got %d", cache.Len())
	}
	if _, found := cache.Get("d"); !found {
		t.Error("Expected 'd' to still be present")
	}
}

func TestLRU_Stats(t *testing.T) {
	cache, _ := newTestLRU(10, time.Minute)

	cache.Add("a", 1)
	cache.Get("a")        // hit
	cache.Get("a")        // hit
	cache.Get("nonexist") // miss

	hits, misses, size := cache.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	cache, clock := newTestLRU(3, time.Minute)

	cache.Add("a", 1)
	clock.Advance(50 * time.Second)
	cache.Add("a", 2)
	clock.Advance(50 * time.Second)

	if cache.Len() != 1 {
		t.Errorf("Expected len 1 after update, got %d", cache.Len())
	}
	// TTL was reset by the second Add.
	if val, found := cache.Get("a"); !found || val != 2 {
		t.Errorf("Get('a') = %d, %v; want 2, true", val, found)
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[int, string](0, 0)
	if c.capacity != 10000 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	cache := NewLRU[string, int](1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (id+j)%26))
				cache.Add(key, j)
				cache.Get(key)
				if j%10 == 0 {
					cache.RemoveIf(func(k string) bool { return k == key })
				}
			}
		}(i)
	}
	wg.Wait()

	cache.Add("test", 1)
	if _, found := cache.Get("test"); !found {
		t.Error("Cache should still work after concurrent access")
	}
}

func BenchmarkLRU_Add(b *testing.B) {
	cache := NewLRU[int, int](10000, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Add(i%20000, i)
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	cache := NewLRU[int, int](10000, time.Minute)
	for i := 0; i < 10000; i++ {
		cache.Add(i, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(i % 10000)
	}
}
