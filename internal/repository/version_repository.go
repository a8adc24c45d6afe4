package repository

import (
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) Create(version *models.AppVersion) error {
	return r.db.Create(version).Error
}

func (r *VersionRepository) FindByAppAndVersion(appID uint, version string) (*models.AppVersion, error) {
	var v models.AppVersion
	err := r.db.Where("app_id = ? AND version = ?", appID, version).First(&v).Error
	return &v, err
}

func (r *VersionRepository) ListByApp(appID uint) ([]models.AppVersion, error) {
	var versions []models.AppVersion
	err := r.db.Where("app_id = ?", appID).Order("created_at DESC").Find(&versions).Error
	return versions, err
}

func (r *VersionRepository) Current(appID uint) (*models.AppVersion, error) {
	var v models.AppVersion
	err := r.db.Where("app_id = ? AND is_current_version = ?", appID, true).First(&v).Error
	return &v, err
}

func (r *VersionRepository) Latest(appID uint) (*models.AppVersion, error) {
	var v models.AppVersion
	err := r.db.Where("app_id = ?", appID).Order("created_at DESC").First(&v).Error
	return &v, err
}

// Publish flips the version to published/current inside one transaction so
// the at-most-one-current invariant holds under concurrent publishes.
func (r *VersionRepository) Publish(appID, versionID uint, publishedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AppVersion{}).
			Where("app_id = ? AND is_current_version = ?", appID, true).
			Update("is_current_version", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.AppVersion{}).
			Where("id = ? AND app_id = ?", versionID, appID).
			Updates(map[string]interface{}{
				"status":             models.VersionPublished,
				"is_current_version": true,
				"published_at":       publishedAt,
			}).Error
	})
}

func (r *VersionRepository) DeleteByApp(appID uint) error {
	return r.db.Where("app_id = ?", appID).Delete(&models.AppVersion{}).Error
}
