package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func exerciseSessionCache(t *testing.T, c SessionCache) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, KeyBranch); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, KeyBranch, "7", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, KeyUserToken, "tok", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, KeyBranch)
	if err != nil || !ok || got != "7" {
		t.Fatalf("expected branch 7, got %q ok=%v err=%v", got, ok, err)
	}

	if err := c.Delete(ctx, SessionKeys...); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, key := range []string{KeyBranch, KeyUserToken} {
		if _, ok, _ := c.Get(ctx, key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
}

func TestMemorySessionCache(t *testing.T) {
	exerciseSessionCache(t, NewMemorySessionCache())
}

func TestMemorySessionCacheExpiry(t *testing.T) {
	c := NewMemorySessionCache()
	now := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(context.Background(), KeyUserToken, "tok", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), KeyUserToken); !ok {
		t.Fatalf("expected value before expiry")
	}
	now = now.Add(time.Hour)
	if _, ok, _ := c.Get(context.Background(), KeyUserToken); ok {
		t.Fatalf("expected value to expire")
	}
}

func TestRedisSessionCache(t *testing.T) {
	addr := os.Getenv("FUELSALES_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set FUELSALES_TEST_REDIS_ADDR to run redis integration test")
	}

	base := NewRedisSessionCache(addr, os.Getenv("FUELSALES_TEST_REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = base.Close() })
	if err := base.Ping(context.Background()); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	exerciseSessionCache(t, base.WithPrefix(fmt.Sprintf("fuelsales:test:%d:", time.Now().UnixNano())))
}
