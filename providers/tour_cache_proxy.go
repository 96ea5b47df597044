package providers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tourmate.app/models"
)

// TourCacheProxy caches list responses in front of a TourProvider. Detail
// lookups pass through uncached.
type TourCacheProxy struct {
	realProvider TourProvider
	cache        CacheInterface
	cacheTTL     time.Duration
}

func NewTourCacheProxy(realProvider TourProvider, cache CacheInterface, cacheTTL time.Duration) TourProvider {
	return &TourCacheProxy{
		realProvider: realProvider,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func (p *TourCacheProxy) GetTours(category string, query *models.TourQuery) ([]models.TourItem, error) {
	cacheKey := p.generateCacheKey(category, query)

	if cachedItems, found := p.cache.Get(cacheKey); found {
		slog.Info("cache hit", "category", category)
		return cachedItems, nil
	}

	slog.Info("cache miss", "category", category)

	items, err := p.realProvider.GetTours(category, query)
	if err != nil {
		return nil, err
	}

	p.cache.Set(cacheKey, items, p.cacheTTL)

	return items, nil
}

func (p *TourCacheProxy) GetTourDetail(contentID string) (*models.TourDetail, error) {
	return p.realProvider.GetTourDetail(contentID)
}

func (p *TourCacheProxy) generateCacheKey(category string, query *models.TourQuery) string {
	if query == nil {
		return fmt.Sprintf("tours:%s", category)
	}
	return fmt.Sprintf("tours:%s:%.4f:%.4f:%d:%s",
		category, query.MapX, query.MapY, query.RadiusMeters, strings.Join(query.Adjectives, ","))
}
