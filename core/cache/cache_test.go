package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 3})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}
	if _, ok := cache.Get("d"); ok {
		t.Error("Get(d) should return false")
	}
	if n := cache.Len(); n != 3 {
		t.Errorf("Len() = %d; want 3", n)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	var evicted []string
	cache := NewLRUCache[string, int](Config{
		MaxSize: 2,
		OnEvict: func(key, value any) { evicted = append(evicted, key.(string)) },
	})

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a")    // "b" is now least recently used
	cache.Put("c", 3) // evicts "b"

	if _, ok := cache.Get("b"); ok {
		t.Error("Get(b) should return false after eviction")
	}
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v; want [b]", evicted)
	}
	if s := cache.Stats(); s.Evictions != 1 || s.Size != 2 || s.MaxSize != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUCache_Update(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})
	cache.Put("a", 1)
	cache.Put("a", 2)
	if v, _ := cache.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d; want 2", v)
	}
	if n := cache.Len(); n != 1 {
		t.Errorf("Len() = %d; want 1", n)
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewLRUCache[string, int](Config{TTL: time.Minute}).(*lruCache[string, int])
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) before expiry should succeed")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after expiry should fail")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Len() = %d; want 0", n)
	}
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	cache := NewLRUCache[int, string](DefaultConfig())
	for i := 0; i < 5; i++ {
		cache.Put(i, fmt.Sprint(i))
	}
	cache.Remove(2)
	if _, ok := cache.Get(2); ok {
		t.Error("Get(2) should return false after Remove")
	}
	cache.Clear()
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d; want 0", n)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[string, int](Config{})
	if r := cache.Stats().HitRate(); r != 0 {
		t.Errorf("HitRate() = %v; want 0", r)
	}
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("b")
	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate() != 0.5 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache[int, int](Config{MaxSize: 10})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				cache.Put(i%20, g)
				cache.Get(i % 20)
			}
		}(g)
	}
	wg.Wait()
	if n := cache.Len(); n > 10 {
		t.Errorf("Len() = %d; want <= 10", n)
	}
}

func TestGetOrCompute(t *testing.T) {
	cache := NewLRUCache[string, int](Config{})
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := GetOrCompute(cache, "k", compute)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCompute() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times; want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := GetOrCompute(cache, "bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCompute() error = %v; want boom", err)
	}
	if _, ok := cache.Get("bad"); ok {
		t.Error("failed computation was cached")
	}
}

func TestKeyOf(t *testing.T) {
	a := KeyOf([]byte("ab"), []byte("c"))
	b := KeyOf([]byte("a"), []byte("bc"))
	if a == b {
		t.Error("KeyOf() ignores part boundaries")
	}
	if KeyOf([]byte("ab"), []byte("c")) != a {
		t.Error("KeyOf() is not deterministic")
	}
	if s := a.String(); len(s) != 64 {
		t.Errorf("String() length = %d; want 64", len(s))
	}
}
