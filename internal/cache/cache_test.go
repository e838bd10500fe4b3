// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a client on DB 15. Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := ConnectValkey(context.Background(), envOr("VALKEY_HOST", "localhost")+":"+envOr("VALKEY_PORT", "6379"),
		os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	ctx := context.Background()
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkeyUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := ConnectValkey(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("expected error for unreachable address")
	}
}

func TestPageCacheSetAndGet(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	if data, ok := pc.Get(ctx, PostKey("test-page")); ok || data != nil {
		t.Fatal("expected cache miss")
	}

	html := []byte("<html><body>Test Page</body></html>")
	pc.Set(ctx, PostKey("test-page"), html)

	data, ok := pc.Get(ctx, PostKey("test-page"))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(html) {
		t.Errorf("data = %q, want %q", data, html)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, HomepageKey(), []byte("home"))
	pc.Set(ctx, PostKey("a"), []byte("a"))
	pc.Set(ctx, PostKey("b"), []byte("b"))

	pc.Invalidate(ctx, HomepageKey(), PostKey("a"))
	pc.Invalidate(ctx)

	if _, ok := pc.Get(ctx, HomepageKey()); ok {
		t.Error("homepage still cached")
	}
	if _, ok := pc.Get(ctx, PostKey("a")); ok {
		t.Error("post a still cached")
	}
	if _, ok := pc.Get(ctx, PostKey("b")); !ok {
		t.Error("post b should remain cached")
	}
}

func TestPageCacheInvalidateAll(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	keys := []string{HomepageKey(), PostKey("x"), ArchiveKey("partners", "acme")}
	for _, k := range keys {
		pc.Set(ctx, k, []byte(k))
	}

	pc.InvalidateAll(ctx)

	for _, k := range keys {
		if _, ok := pc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{HomepageKey(), "_home"},
		{PostKey("about-us"), "post:about-us"},
		{ArchiveKey("partners", "acme"), "term:partners:acme"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	pc := NewPageCache(nil, 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("ttl = %v, want %v", pc.ttl, DefaultPageTTL)
	}
}

func TestNilPageCache(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	pc.Set(ctx, HomepageKey(), []byte("x"))
	pc.Invalidate(ctx, HomepageKey())
	pc.InvalidateAll(ctx)
	if _, ok := pc.Get(ctx, HomepageKey()); ok {
		t.Error("nil cache must never hit")
	}
}
