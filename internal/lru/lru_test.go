// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lru

import (
	"fmt"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = true")
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after overwrite = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // b is now the oldest
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 3 {
		t.Errorf("Stats() = %+v, want 1 eviction and 3 entries", s)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	create := func() int { calls++; return 7 }

	if v := c.GetOrCreate("k", create); v != 7 {
		t.Errorf("GetOrCreate() = %d, want 7", v)
	}
	if v := c.GetOrCreate("k", create); v != 7 {
		t.Errorf("second GetOrCreate() = %d, want 7", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheClear(t *testing.T) {
	c := New[int, int](0)
	if c.Capacity() != 1 {
		t.Errorf("Capacity() = %d, want 1", c.Capacity())
	}

	c = New[int, int](8)
	for i := range 5 {
		c.Set(i, i)
	}
	c.Get(2)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) found an entry after Clear")
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats() after Clear = %+v, want counters kept", s)
	}
	c.Set(9, 9)
	if v, ok := c.Get(9); !ok || v != 9 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := fmt.Sprintf("%d-%d", g, i%100)
				c.GetOrCreate(k, func() int { return i })
				c.Get(k)
			}
		}()
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
	if s := c.Stats(); s.Evictions == 0 {
		t.Error("expected evictions under pressure")
	}
}

func BenchmarkCacheGetOrCreate(b *testing.B) {
	c := New[int, int](1024)
	b.ReportAllocs()
	i := 0
	for b.Loop() {
		c.GetOrCreate(i%2048, func() int { return i })
		i++
	}
}
