package repository

import (
	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
)

type DeveloperRepository struct {
	db *gorm.DB
}

func NewDeveloperRepository(db *gorm.DB) *DeveloperRepository {
	return &DeveloperRepository{db: db}
}

func (r *DeveloperRepository) Create(dev *models.Developer) error {
	return r.db.Create(dev).Error
}

func (r *DeveloperRepository) FindByID(id uint) (*models.Developer, error) {
	var dev models.Developer
	err := r.db.First(&dev, id).Error
	return &dev, err
}

func (r *DeveloperRepository) FindByUserID(userID uint) (*models.Developer, error) {
	var dev models.Developer
	err := r.db.Where("user_id = ?", userID).First(&dev).Error
	return &dev, err
}

func (r *DeveloperRepository) Update(dev *models.Developer) error {
	return r.db.Save(dev).Error
}

func (r *DeveloperRepository) IncrementTotalApps(developerID uint, delta int) error {
	return r.db.Model(&models.Developer{}).Where("id = ?", developerID).
		Update("total_apps", gorm.Expr("total_apps + ?", delta)).Error
}

func (r *DeveloperRepository) IncrementPublishedApps(developerID uint, delta int) error {
	return r.db.Model(&models.Developer{}).Where("id = ?", developerID).
		Update("published_apps", gorm.Expr("published_apps + ?", delta)).Error
}
