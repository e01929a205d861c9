// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestMemory(t *testing.T, opts MemoryOptions) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(opts)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{DefaultTTL: time.Hour})
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
	if has, _ := c.Has(ctx, "k"); !has {
		t.Error("Has should report the key")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{DefaultTTL: time.Hour})
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get = %v, want ErrCacheMiss", err)
	}
	if has, _ := c.Has(ctx, "short"); has {
		t.Error("Has should not report an expired key")
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{})
	ctx := context.Background()

	for _, k := range []string{"tr:7:de", "tr:7:fr", "tr:70:de", "forms:list"} {
		_ = c.Set(ctx, k, []byte("x"), 0)
	}
	if err := c.DeleteByPrefix(ctx, "tr:7:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	for k, want := range map[string]bool{"tr:7:de": false, "tr:7:fr": false, "tr:70:de": true, "forms:list": true} {
		if has, _ := c.Has(ctx, k); has != want {
			t.Errorf("Has(%q) = %v, want %v", k, has, want)
		}
	}
}

func TestMemoryCache_MaxSizeEvicts(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{DefaultTTL: time.Hour, MaxSize: 2})
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	if n := c.Stats().Items; n != 2 {
		t.Errorf("Items = %d, want 2", n)
	}
	if has, _ := c.Has(ctx, "a"); has {
		t.Error("entry closest to expiry should have been evicted")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{})
	ctx := context.Background()

	_ = c.Set(ctx, "k1", []byte("value1"), 0)
	_ = c.Set(ctx, "k2", []byte("value2"), 0)
	_, _ = c.Get(ctx, "k1")
	_, _ = c.Get(ctx, "k1")
	_, _ = c.Get(ctx, "missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 2 || s.Items != 2 {
		t.Errorf("Stats = %+v", s)
	}
	if s.Size != 12 {
		t.Errorf("Size = %d, want 12", s.Size)
	}
	want := float64(2) / float64(3) * 100
	if s.HitRate < want-0.01 || s.HitRate > want+0.01 {
		t.Errorf("HitRate = %.2f, want %.2f", s.HitRate, want)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("Stats after reset = %+v", s)
	}
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{})
	ctx := context.Background()

	original := []byte("original")
	_ = c.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("Get = %q, cache did not copy on Set", got)
	}
	got[0] = 'Y'

	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("Get = %q, cache did not copy on Get", again)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := newTestMemory(t, MemoryOptions{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "k", []byte("v"), 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Get(ctx, "k")
				_ = c.DeleteByPrefix(ctx, "none:")
			}
		}()
	}
	wg.Wait()

	if _, err := c.Get(ctx, "k"); err != nil {
		t.Errorf("Get after concurrent access: %v", err)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{CleanupInterval: time.Second})
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
