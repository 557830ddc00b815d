package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Phase string `json:"phase"`
	Value int    `json:"value"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "status", payload{Phase: "HEALTHY", Value: -2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "status", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phase != "HEALTHY" || got.Value != -2 {
		t.Fatalf("unexpected payload %+v", got)
	}

	var raw string
	if err := mc.Get(ctx, "status", &raw); err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if raw != `{"phase":"HEALTHY","value":-2}` {
		t.Fatalf("unexpected raw value %q", raw)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	var v string
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatal("expired key reported as existing")
	}
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", 0)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", 0)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", 0)

	if ok, _ := mc.Exists(ctx, "a"); ok {
		t.Fatal("oldest key should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "b", "c"); !ok {
		t.Fatal("newer keys missing")
	}

	// overwriting an existing key must not evict
	_ = mc.Set(ctx, "c", "33", 0)
	if ok, _ := mc.Exists(ctx, "b"); !ok {
		t.Fatal("overwrite evicted another key")
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "etcd"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	svc, err := New(Config{})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	defer svc.Close()
	if _, ok := svc.(*MemoryCache); !ok {
		t.Fatalf("default driver should be memory, got %T", svc)
	}
}
