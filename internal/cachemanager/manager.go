// Package cachemanager provides generic TTL caches used to memoize expensive
// lookups such as reflected domain descriptors.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed cache with per-entry expiration.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
