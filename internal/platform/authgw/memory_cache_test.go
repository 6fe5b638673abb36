package authgw

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	subject := Subject{ID: "u1", Name: "A", Email: "a@example.com", Role: "p3m"}
	if err := cache.Put(context.Background(), "tok", subject, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.Get(context.Background(), "tok")
	if err != nil || !ok {
		t.Fatalf("get = ok=%v err=%v, want hit", ok, err)
	}
	if got != subject {
		t.Fatalf("subject = %+v, want %+v", got, subject)
	}
}

func TestMemoryCacheExpiresLazily(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := NewMemoryCache()
	cache.nowFn = func() time.Time { return now }

	_ = cache.Put(context.Background(), "tok", Subject{ID: "u1"}, 300*time.Second)

	now = now.Add(299 * time.Second)
	if _, ok, _ := cache.Get(context.Background(), "tok"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := cache.Get(context.Background(), "tok"); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestMemoryCacheEvictForcesMiss(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	_ = cache.Put(context.Background(), "tok", Subject{ID: "u1"}, time.Minute)
	_ = cache.Evict(context.Background(), "tok")

	if _, ok, _ := cache.Get(context.Background(), "tok"); ok {
		t.Fatal("evicted entry still present")
	}
}

func TestMemoryCacheKeysAreDigestsNotTokens(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	_ = cache.Put(context.Background(), "raw-secret-token", Subject{ID: "u1"}, time.Minute)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	for key := range cache.entries {
		if key == "raw-secret-token" {
			t.Fatal("raw token used as cache key")
		}
	}
}

func TestMemoryCacheOverwriteIsIdempotent(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	subject := Subject{ID: "u1", Email: "a@example.com"}
	_ = cache.Put(context.Background(), "tok", subject, time.Minute)
	_ = cache.Put(context.Background(), "tok", subject, time.Minute)

	got, ok, _ := cache.Get(context.Background(), "tok")
	if !ok || got != subject {
		t.Fatalf("get after double put = %+v ok=%v", got, ok)
	}
}
