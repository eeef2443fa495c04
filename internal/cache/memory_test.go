package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSetDelete(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "v" {
		t.Fatalf("expected v, got %q", value)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "short", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "forever", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(15 * time.Millisecond)

	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Fatalf("expected hit, got %v", err)
	}
}

func TestGetOrSetComputesOnceThenHits(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		return "computed", nil
	}

	first, err := GetOrSet(ctx, m, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("first GetOrSet: %v", err)
	}
	second, err := GetOrSet(ctx, m, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("second GetOrSet: %v", err)
	}

	if first != "computed" || second != "computed" {
		t.Fatalf("unexpected values %q / %q", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected one compute call, got %d", calls)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := ArticleDetailKey("hello-world"); got != "articles:detail:hello-world" {
		t.Fatalf("unexpected detail key %q", got)
	}
	if got := NewsletterHTMLKey(42); got != "newsletter:content:42:html" {
		t.Fatalf("unexpected newsletter key %q", got)
	}
	if ArticleListKey != "articles:list" {
		t.Fatalf("unexpected list key %q", ArticleListKey)
	}
}
