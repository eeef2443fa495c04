package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when a key is absent or has expired.
	ErrNotFound = errors.New("cache: key not found")
)

// Store is a key-value cache with per-key TTL. Each key is read,
// written and invalidated independently; no multi-key guarantees
// are offered or relied upon.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ArticleListKey caches the unfiltered article list response.
const ArticleListKey = "articles:list"

// ArticleDetailKey caches a single article detail response.
func ArticleDetailKey(slug string) string {
	return fmt.Sprintf("articles:detail:%s", slug)
}

// NewsletterHTMLKey caches the composed HTML body of a newsletter
// content record.
func NewsletterHTMLKey(id uint) string {
	return fmt.Sprintf("newsletter:content:%d:html", id)
}

var sfGroup singleflight.Group

// GetOrSet returns the cached value for key, or computes it via fn on a
// miss. Concurrent misses for the same key collapse into a single call.
// A failed Set is ignored; the computed value is still returned.
func GetOrSet(ctx context.Context, store Store, key string, ttl time.Duration, fn func(ctx context.Context) (string, error)) (string, error) {
	if value, err := store.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err, _ := sfGroup.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return "", err
	}

	result := value.(string)
	_ = store.Set(ctx, key, result, ttl)
	return result, nil
}
