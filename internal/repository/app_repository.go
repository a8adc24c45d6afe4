package repository

import (
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

type AppRepository struct {
	db *gorm.DB
}

func NewAppRepository(db *gorm.DB) *AppRepository {
	return &AppRepository{db: db}
}

func (r *AppRepository) Create(app *models.App) error {
	return r.db.Create(app).Error
}

func (r *AppRepository) FindByID(id uint) (*models.App, error) {
	var app models.App
	err := r.db.First(&app, id).Error
	return &app, err
}

func (r *AppRepository) FindBySlug(slug string) (*models.App, error) {
	var app models.App
	err := r.db.Where("slug = ?", slug).First(&app).Error
	return &app, err
}

func (r *AppRepository) Search(filter AppSearchFilter) ([]models.App, int64, error) {
	q := r.db.Model(&models.App{}).Where("status = ?", models.AppPublished)

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(short_description) LIKE LOWER(?)", like, like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	for _, tag := range filter.Tags {
		q = q.Where("tags LIKE ?", "%"+tag+"%")
	}
	if filter.MinRating > 0 {
		q = q.Where("rating >= ?", filter.MinRating)
	}
	if filter.Featured {
		q = q.Where("is_featured = ?", true)
	}
	if filter.Trending {
		q = q.Where("trending = ?", true)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var apps []models.App
	err := q.Order("downloads DESC").Limit(limit).Offset(filter.Offset).Find(&apps).Error
	return apps, total, err
}

func (r *AppRepository) ListByCategory(category string, limit, offset int) ([]models.App, error) {
	var apps []models.App
	err := r.db.Where("status = ? AND category = ?", models.AppPublished, category).
		Order("rating DESC").
		Limit(limit).Offset(offset).
		Find(&apps).Error
	return apps, err
}

func (r *AppRepository) ListFeatured(limit int) ([]models.App, error) {
	var apps []models.App
	err := r.db.Where("status = ? AND is_featured = ?", models.AppPublished, true).
		Order("rating DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}

func (r *AppRepository) ListTrending(limit int) ([]models.App, error) {
	var apps []models.App
	err := r.db.Where("status = ? AND trending = ?", models.AppPublished, true).
		Order("downloads DESC, rating DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}

func (r *AppRepository) ListNew(since time.Time, limit int) ([]models.App, error) {
	var apps []models.App
	err := r.db.Where("status = ? AND published_at >= ?", models.AppPublished, since).
		Order("published_at DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}

func (r *AppRepository) ListByDeveloper(developerID uint) ([]models.App, error) {
	var apps []models.App
	err := r.db.Where("developer_id = ?", developerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *AppRepository) Update(app *models.App) error {
	return r.db.Save(app).Error
}

func (r *AppRepository) SetStatus(appID uint, status models.AppStatus) error {
	return r.db.Model(&models.App{}).Where("id = ?", appID).Update("status", status).Error
}

func (r *AppRepository) SetFeatured(appID uint, featured bool) error {
	return r.db.Model(&models.App{}).Where("id = ?", appID).Update("is_featured", featured).Error
}

func (r *AppRepository) SetTrending(appID uint, trending bool) error {
	return r.db.Model(&models.App{}).Where("id = ?", appID).Update("trending", trending).Error
}

func (r *AppRepository) IncrementDownloads(appID uint) error {
	return r.db.Model(&models.App{}).Where("id = ?", appID).Updates(map[string]interface{}{
		"downloads": gorm.Expr("downloads + 1"),
		"installs":  gorm.Expr("installs + 1"),
	}).Error
}

func (r *AppRepository) CategoryCounts() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&models.App{}).
		Select("category, COUNT(*) as count").
		Where("status = ?", models.AppPublished).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Category] = rw.Count
	}
	return counts, nil
}

func (r *AppRepository) Stats() (MarketplaceStats, error) {
	var stats MarketplaceStats
	err := r.db.Model(&models.App{}).
		Select("COUNT(*) as total_apps, COALESCE(SUM(downloads), 0) as total_downloads, COALESCE(AVG(NULLIF(rating, 0)), 0) as average_rating, COUNT(*) FILTER (WHERE is_featured) as featured_count").
		Where("status = ?", models.AppPublished).
		Scan(&stats).Error
	return stats, err
}

// Delete removes the app row for good so its slug can be reused.
func (r *AppRepository) Delete(appID uint) error {
	return r.db.Unscoped().Delete(&models.App{}, appID).Error
}
