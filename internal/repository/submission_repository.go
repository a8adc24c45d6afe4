package repository

import (
	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(sub *models.AppSubmission) error {
	return r.db.Create(sub).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*models.AppSubmission, error) {
	var sub models.AppSubmission
	err := r.db.First(&sub, id).Error
	return &sub, err
}

func (r *SubmissionRepository) Update(sub *models.AppSubmission) error {
	return r.db.Save(sub).Error
}

func (r *SubmissionRepository) ListByApp(appID uint) ([]models.AppSubmission, error) {
	var subs []models.AppSubmission
	err := r.db.Where("app_id = ?", appID).Order("submitted_at DESC").Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) ListByDeveloper(developerID uint) ([]models.AppSubmission, error) {
	var subs []models.AppSubmission
	err := r.db.Where("developer_id = ?", developerID).Order("submitted_at DESC").Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) ListByStatus(status models.SubmissionStatus, limit int) ([]models.AppSubmission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var subs []models.AppSubmission
	err := r.db.Where("status = ?", status).Order("submitted_at ASC").Limit(limit).Find(&subs).Error
	return subs, err
}
