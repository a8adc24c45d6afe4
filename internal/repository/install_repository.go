package repository

import (
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

type InstallRepository struct {
	db *gorm.DB
}

func NewInstallRepository(db *gorm.DB) *InstallRepository {
	return &InstallRepository{db: db}
}

func (r *InstallRepository) Create(install *models.InstalledApp) error {
	return r.db.Create(install).Error
}

func (r *InstallRepository) Find(userID, organizationID, appID uint) (*models.InstalledApp, error) {
	var install models.InstalledApp
	err := r.db.Where("user_id = ? AND organization_id = ? AND app_id = ?", userID, organizationID, appID).
		First(&install).Error
	return &install, err
}

func (r *InstallRepository) ListByScope(userID, organizationID uint) ([]models.InstalledApp, error) {
	var installs []models.InstalledApp
	err := r.db.Preload("App").
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		Order("pinned DESC, sort_order ASC, created_at ASC").
		Find(&installs).Error
	return installs, err
}

func (r *InstallRepository) Update(install *models.InstalledApp) error {
	return r.db.Save(install).Error
}

// Delete is a hard delete; uninstall leaves no tombstone row.
func (r *InstallRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.InstalledApp{}, id).Error
}

func (r *InstallRepository) IncrementLaunch(id uint, usedAt time.Time) error {
	return r.db.Model(&models.InstalledApp{}).Where("id = ?", id).Updates(map[string]interface{}{
		"launch_count": gorm.Expr("launch_count + 1"),
		"last_used_at": usedAt,
	}).Error
}

func (r *InstallRepository) ExistsForUser(userID, appID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.InstalledApp{}).
		Where("user_id = ? AND app_id = ?", userID, appID).
		Count(&count).Error
	return count > 0, err
}

func (r *InstallRepository) CreateUpdateRecord(rec *models.AppUpdateRecord) error {
	return r.db.Create(rec).Error
}

func (r *InstallRepository) ListUpdateRecords(installedAppID uint) ([]models.AppUpdateRecord, error) {
	var records []models.AppUpdateRecord
	err := r.db.Where("installed_app_id = ?", installedAppID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
