package cache

import (
	"fmt"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for different cache types
const (
	AppTTL          = 5 * time.Minute
	ListTTL         = 2 * time.Minute
	StatsTTL        = 1 * time.Minute
	FeaturedListKey = "catalog:featured"
	TrendingListKey = "catalog:trending"
)

// CatalogCache handles catalog-related caching. All methods are nil-safe so
// the marketplace keeps serving from the database when Redis is down.
type CatalogCache struct {
	redis *RedisCache
}

func NewCatalogCache(redis *RedisCache) *CatalogCache {
	return &CatalogCache{redis: redis}
}

func appSlugKey(slug string) string {
	return fmt.Sprintf("catalog:app:slug:%s", slug)
}

func appIDKey(appID uint) string {
	return fmt.Sprintf("catalog:app:id:%d", appID)
}

// GetAppBySlug retrieves a cached catalog entry.
func (cc *CatalogCache) GetAppBySlug(slug string) (*models.App, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(appSlugKey(slug))
	if err != nil || data == nil {
		return nil, false
	}

	var app models.App
	if err := msgpack.Unmarshal(data, &app); err != nil {
		return nil, false
	}
	return &app, true
}

// SetApp caches a catalog entry under both its slug and ID keys.
func (cc *CatalogCache) SetApp(app *models.App) error {
	if cc == nil || cc.redis == nil || app == nil {
		return nil
	}
	data, err := msgpack.Marshal(app)
	if err != nil {
		return err
	}
	if err := cc.redis.Set(appSlugKey(app.Slug), data, AppTTL); err != nil {
		return err
	}
	return cc.redis.Set(appIDKey(app.ID), data, AppTTL)
}

func (cc *CatalogCache) GetApp(appID uint) (*models.App, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(appIDKey(appID))
	if err != nil || data == nil {
		return nil, false
	}

	var app models.App
	if err := msgpack.Unmarshal(data, &app); err != nil {
		return nil, false
	}
	return &app, true
}

// InvalidateApp drops both keys for an entry. Call after any listing mutation:
// publish, curation flags, rating recompute.
func (cc *CatalogCache) InvalidateApp(appID uint, slug string) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	if err := cc.redis.Delete(appSlugKey(slug)); err != nil {
		return err
	}
	return cc.redis.Delete(appIDKey(appID))
}

func (cc *CatalogCache) GetList(key string) ([]models.App, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(key)
	if err != nil || data == nil {
		return nil, false
	}

	var apps []models.App
	if err := msgpack.Unmarshal(data, &apps); err != nil {
		return nil, false
	}
	return apps, true
}

func (cc *CatalogCache) SetList(key string, apps []models.App) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(apps)
	if err != nil {
		return err
	}
	return cc.redis.Set(key, data, ListTTL)
}

// InvalidateLists drops every curated list after curation or publish changes.
func (cc *CatalogCache) InvalidateLists() error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	if err := cc.redis.Delete(FeaturedListKey); err != nil {
		return err
	}
	return cc.redis.Delete(TrendingListKey)
}

func (cc *CatalogCache) GetCategoryCounts() (map[string]int64, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get("catalog:categories")
	if err != nil || data == nil {
		return nil, false
	}

	var counts map[string]int64
	if err := msgpack.Unmarshal(data, &counts); err != nil {
		return nil, false
	}
	return counts, true
}

func (cc *CatalogCache) SetCategoryCounts(counts map[string]int64) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(counts)
	if err != nil {
		return err
	}
	return cc.redis.Set("catalog:categories", data, StatsTTL)
}
