package services

import (
	"context"
	"crypto/subtle"

	"storefront/internal/cache"
	"storefront/internal/metrics"

	"go.uber.org/zap"
)

var (
	collectionTopics = map[string]bool{
		"collections/create": true,
		"collections/delete": true,
		"collections/update": true,
	}
	productTopics = map[string]bool{
		"products/create": true,
		"products/delete": true,
		"products/update": true,
	}
)

// RevalidationService drops cached catalog data when the commerce backend
// reports a change.
type RevalidationService struct {
	secret  string
	cache   *cache.Loader
	metrics *metrics.CheckoutMetrics
	log     *zap.Logger
}

func NewRevalidationService(secret string, loader *cache.Loader, m *metrics.CheckoutMetrics, log *zap.Logger) *RevalidationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RevalidationService{secret: secret, cache: loader, metrics: m, log: log}
}

// Revalidate invalidates the tag matching topic. It reports false without
// touching the cache for a wrong secret or an unrelated topic.
func (s *RevalidationService) Revalidate(ctx context.Context, secret, topic string) (bool, error) {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		s.log.Warn("invalid revalidation secret", zap.String("topic", topic))
		return false, nil
	}

	var tag string
	switch {
	case collectionTopics[topic]:
		tag = cache.TagCollections
	case productTopics[topic]:
		tag = cache.TagProducts
	default:
		return false, nil
	}

	if err := s.cache.Invalidate(ctx, tag); err != nil {
		return false, err
	}
	s.metrics.IncCacheInvalidation(tag)
	s.log.Info("cache revalidated", zap.String("topic", topic), zap.String("tag", tag))
	return true, nil
}
