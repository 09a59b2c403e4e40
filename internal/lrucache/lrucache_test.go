package lrucache

import (
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New[string, int](4, time.Minute)
	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got (%v,%v), want (1,true)", v, ok)
	}
}

func TestMissOnUnknownKey(t *testing.T) {
	c := New[string, int](4, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss on unknown key")
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2, time.Minute)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Get(1) // touch 1, making 2 the LRU
	c.Put(3, 3)
	if _, ok := c.Get(2); ok {
		t.Fatalf("entry 2 should have been evicted as least-recently-used")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatalf("entry 1 should still be present")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatalf("entry 3 should be present")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[string, int](4, time.Millisecond)
	fake := time.Now()
	c.now = func() time.Time { return fake }
	c.Put("a", 1)
	fake = fake.Add(2 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestOverwriteRefreshesRecency(t *testing.T) {
	c := New[int, int](2, time.Minute)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(1, 10) // refresh 1, making 2 the LRU
	c.Put(3, 3)
	if _, ok := c.Get(2); ok {
		t.Fatalf("entry 2 should have been evicted")
	}
	v, ok := c.Get(1)
	if !ok || v != 10 {
		t.Fatalf("entry 1 should hold updated value, got (%v,%v)", v, ok)
	}
}
