// Package cache stores JSON snapshots grouped under tags. Invalidating a tag
// bumps its version, which orphans every key written under the old one.
package cache

import (
	"context"
	"errors"
)

// Tags used by the storefront.
const (
	TagCart        = "cart"
	TagProducts    = "products"
	TagCollections = "collections"
)

var ErrCacheMiss = errors.New("cache miss")

type TagCache interface {
	// Get decodes the value stored under tag/key into dst, or returns ErrCacheMiss.
	Get(ctx context.Context, tag, key string, dst any) error
	// Version reports the current version of tag.
	Version(ctx context.Context, tag string) (int64, error)
	// Set stores value under tag/key as of version. A value set under a
	// version that has since been invalidated is never returned by Get.
	Set(ctx context.Context, tag, key string, version int64, value any) error
	Invalidate(ctx context.Context, tag string) error
}
