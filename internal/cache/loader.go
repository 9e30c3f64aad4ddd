package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader reads through a TagCache. Concurrent misses for the same key share
// a single load.
type Loader struct {
	cache TagCache
	group singleflight.Group
	log   *zap.Logger
}

func NewLoader(cache TagCache, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{cache: cache, log: log}
}

// Invalidate forwards to the underlying cache.
func (l *Loader) Invalidate(ctx context.Context, tag string) error {
	return l.cache.Invalidate(ctx, tag)
}

// Load returns the cached value for tag/key or calls load and caches its
// result. Cache failures degrade to a direct load; load errors are never
// cached.
func Load[T any](ctx context.Context, l *Loader, tag, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := l.cache.Get(ctx, tag, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		l.log.Warn("cache read failed", zap.String("tag", tag), zap.String("key", key), zap.Error(err))
	}

	// The version is taken before loading so a value loaded across an
	// invalidation lands under the old version.
	version, err := l.cache.Version(ctx, tag)
	if err != nil {
		l.log.Warn("cache version read failed", zap.String("tag", tag), zap.Error(err))
		return load(ctx)
	}

	v, err, _ := l.group.Do(fmt.Sprintf("%s:v%d:%s", tag, version, key), func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		if err := l.cache.Set(ctx, tag, key, version, value); err != nil {
			l.log.Warn("cache write failed", zap.String("tag", tag), zap.String("key", key), zap.Error(err))
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
