package handlers

import (
	"strconv"
	"strings"

	"github.com/appgrid/marketplace-backend/internal/cache"
	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	catalogCache   *cache.CatalogCache
}

func NewCatalogHandler(catalogService *service.CatalogService, catalogCache *cache.CatalogCache) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, catalogCache: catalogCache}
}

// SearchApps is the storefront search endpoint.
// GET /api/apps?q=...&category=...&min_rating=...&featured=true&limit=20&offset=0
func (h *CatalogHandler) SearchApps(c *fiber.Ctx) error {
	filter := repository.AppSearchFilter{
		Query:     strings.TrimSpace(c.Query("q")),
		Category:  strings.TrimSpace(c.Query("category")),
		MinRating: 0,
		Featured:  c.QueryBool("featured"),
		Trending:  c.QueryBool("trending"),
		Limit:     c.QueryInt("limit", 20),
		Offset:    c.QueryInt("offset", 0),
	}
	if tags := strings.TrimSpace(c.Query("tags")); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	if v := c.Query("min_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 5 {
			return httpx.BadRequest(c, "invalid_min_rating", "min_rating must be between 0 and 5")
		}
		filter.MinRating = r
	}
	if v := c.Query("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return httpx.BadRequest(c, "invalid_max_price", "max_price must be a non-negative number")
		}
		filter.MaxPrice = &p
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	apps, total, err := h.catalogService.SearchApps(filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"apps":   apps,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetAppBySlug serves a single listing, cache first.
// GET /api/apps/:slug
func (h *CatalogHandler) GetAppBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	if app, ok := h.catalogCache.GetAppBySlug(slug); ok {
		return c.JSON(app.ToResponse())
	}

	app, err := h.catalogService.GetAppBySlug(slug)
	if err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.SetApp(app)
	return c.JSON(app.ToResponse())
}

// GET /api/apps/:slug/versions
func (h *CatalogHandler) GetVersionHistory(c *fiber.Ctx) error {
	app, err := h.catalogService.GetAppBySlug(c.Params("slug"))
	if err != nil {
		return serviceError(c, err)
	}
	versions, err := h.catalogService.GetVersionHistory(app.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(versions)
}

// GET /api/apps/featured
func (h *CatalogHandler) ListFeatured(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	if apps, ok := h.catalogCache.GetList(cache.FeaturedListKey); ok {
		return c.JSON(apps)
	}
	apps, err := h.catalogService.ListFeatured(limit)
	if err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.SetList(cache.FeaturedListKey, apps)
	return c.JSON(apps)
}

// GET /api/apps/trending
func (h *CatalogHandler) ListTrending(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	if apps, ok := h.catalogCache.GetList(cache.TrendingListKey); ok {
		return c.JSON(apps)
	}
	apps, err := h.catalogService.ListTrending(limit)
	if err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.SetList(cache.TrendingListKey, apps)
	return c.JSON(apps)
}

// GET /api/apps/new
func (h *CatalogHandler) ListNew(c *fiber.Ctx) error {
	apps, err := h.catalogService.ListNew(c.QueryInt("limit", 10))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(apps)
}

// GET /api/categories/:category/apps
func (h *CatalogHandler) ListByCategory(c *fiber.Ctx) error {
	apps, err := h.catalogService.ListByCategory(c.Params("category"), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(apps)
}

// GET /api/categories
func (h *CatalogHandler) CategoryCounts(c *fiber.Ctx) error {
	if counts, ok := h.catalogCache.GetCategoryCounts(); ok {
		return c.JSON(counts)
	}
	counts, err := h.catalogService.CategoryCounts()
	if err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.SetCategoryCounts(counts)
	return c.JSON(counts)
}

// GET /api/stats
func (h *CatalogHandler) MarketplaceStats(c *fiber.Ctx) error {
	stats, err := h.catalogService.MarketplaceStats()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

type curationRequest struct {
	Value bool `json:"value"`
}

// SetFeatured is admin-side curation.
// PUT /api/admin/apps/:id/featured
func (h *CatalogHandler) SetFeatured(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}
	var req curationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if err := h.catalogService.SetFeatured(uint(appID), req.Value); err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.InvalidateLists()
	return c.JSON(fiber.Map{"featured": req.Value})
}

// PUT /api/admin/apps/:id/trending
func (h *CatalogHandler) SetTrending(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}
	var req curationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if err := h.catalogService.SetTrending(uint(appID), req.Value); err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.InvalidateLists()
	return c.JSON(fiber.Map{"trending": req.Value})
}
