// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration, clock *fakeClock) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "test.db"), ttl)
	if err != nil {
		t.Fatal(err)
	}
	if clock != nil {
		s.WithClock(clock.Now)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour, nil)

	if err := s.Put(ctx, "threads", "t1", []byte(`{"id":"t1"}`)); err != nil {
		t.Fatal(err)
	}

	data, ok, err := s.Get(ctx, "threads", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != `{"id":"t1"}` {
		t.Errorf("unexpected value: %s", data)
	}

	// Same key in another namespace is a different entry
	if _, ok, _ := s.Get(ctx, "messages", "t1"); ok {
		t.Error("expected miss for different namespace")
	}
}

func TestSQLiteStore_Expiration(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newTestStore(t, time.Minute, clock)

	if err := s.Put(ctx, "ns", "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)

	if _, ok, err := s.Get(ctx, "ns", "k"); err != nil || ok {
		t.Errorf("Get after expiration = (%v, %v), want miss", ok, err)
	}

	n, err := s.Clear(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Clear(expiredOnly) removed %d rows, want 1", n)
	}
}

func TestSQLiteStore_RemoveAndStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour, nil)

	_ = s.Put(ctx, "ns", "a", []byte("1"))
	_ = s.Put(ctx, "ns", "b", []byte("2"))
	s.Get(ctx, "ns", "a") // hit

	if err := s.Remove(ctx, "ns", "a"); err != nil {
		t.Fatal(err)
	}
	s.Get(ctx, "ns", "a") // miss

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}

	if _, err := s.Clear(ctx, false); err != nil {
		t.Fatal(err)
	}
	stats, _ = s.Stats(ctx)
	if stats.Entries != 0 {
		t.Errorf("Entries after Clear = %d, want 0", stats.Entries)
	}
}

func TestSQLiteStore_RemoveNamespace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour, nil)

	_ = s.Put(ctx, "threads.list", "20:0", []byte("[]"))
	_ = s.Put(ctx, "threads.list", "20:20", []byte("[]"))
	_ = s.Put(ctx, "threads", "t1", []byte("{}"))

	if err := s.RemoveNamespace(ctx, "threads.list"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "threads.list", "20:0"); ok {
		t.Error("list entry should be gone")
	}
	if _, ok, _ := s.Get(ctx, "threads", "t1"); !ok {
		t.Error("other namespaces must survive")
	}
}
