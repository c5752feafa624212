package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()
	store := NewStore()

	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected miss on empty store")
	}

	store.Set("k", "v1")
	v, ok := store.Get("k")
	if !ok || v.(string) != "v1" {
		t.Fatalf("expected v1, got %v (present=%v)", v, ok)
	}

	store.Set("k", "v2")
	v, _ = store.Get("k")
	if v.(string) != "v2" {
		t.Fatalf("set did not replace: %v", v)
	}

	store.Delete("k")
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}

	// Deleting an absent key is a no-op
	store.Delete("k")
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()
	store := NewStore()

	store.Set("a", 1)
	store.Set("b", 2)
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d", store.Len())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			store.Set(key, n)
			store.Get(key)
			store.Len()
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Fatalf("expected 5 distinct keys, got %d", store.Len())
	}
}

func TestRegistry_PerUserIsolation(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	alice := reg.ForUser("alice")
	bob := reg.ForUser("bob")

	alice.Set("k", "alice-value")
	if _, ok := bob.Get("k"); ok {
		t.Fatal("bob's store sees alice's entry")
	}

	// Same user gets the same store back
	if reg.ForUser("alice") != alice {
		t.Fatal("expected the same store instance for the same user")
	}
}

func TestRegistry_Drop(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	store := reg.ForUser("carol")
	store.Set("k", "v")

	reg.Drop("carol")
	fresh := reg.ForUser("carol")
	if fresh == store {
		t.Fatal("expected a fresh store after drop")
	}
	if _, ok := fresh.Get("k"); ok {
		t.Fatal("dropped store's entries leaked into the fresh one")
	}
}
