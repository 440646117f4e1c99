package services

import (
	"context"
	"sync"
	"time"

	"relay/pkg/models"
)

const (
	statusListKey = "webhookdata:all"
	statusListTTL = 30 * time.Second
)

// Cache is the subset of cache.Redis the services use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type noCache struct{}

func (noCache) Get(context.Context, string, any) bool { return false }
func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Del(context.Context, ...string) error { return nil }

func orNoCache(c Cache) Cache {
	if c == nil {
		return noCache{}
	}
	return c
}

// StatusListCache holds the cached status listing shared by the ingest and
// read sides. Every invalidation bumps a generation; a fill started under an
// older generation is discarded.
type StatusListCache struct {
	cache Cache

	mu  sync.Mutex
	gen uint64
}

func NewStatusListCache(c Cache) *StatusListCache {
	return &StatusListCache{cache: orNoCache(c)}
}

func (l *StatusListCache) generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

func (l *StatusListCache) load(ctx context.Context) ([]models.Record, bool) {
	var records []models.Record
	if !l.cache.Get(ctx, statusListKey, &records) {
		return nil, false
	}
	return records, true
}

// fill stores records read under generation gen. It reports false when an
// invalidation happened since.
func (l *StatusListCache) fill(ctx context.Context, gen uint64, records []models.Record) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return false, nil
	}
	return true, l.cache.Set(ctx, statusListKey, records, statusListTTL)
}

func (l *StatusListCache) invalidate(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.cache.Del(ctx, statusListKey)
}

func orNewListCache(l *StatusListCache) *StatusListCache {
	if l == nil {
		return NewStatusListCache(nil)
	}
	return l
}
