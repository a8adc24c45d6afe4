package repository

import (
	"math"

	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(review *models.AppReview) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) FindByID(id uint) (*models.AppReview, error) {
	var review models.AppReview
	err := r.db.First(&review, id).Error
	return &review, err
}

func (r *ReviewRepository) FindByAppAndUser(appID, userID uint) (*models.AppReview, error) {
	var review models.AppReview
	err := r.db.Where("app_id = ? AND user_id = ?", appID, userID).First(&review).Error
	return &review, err
}

func (r *ReviewRepository) ListByApp(appID uint, limit, offset int) ([]models.AppReview, int64, error) {
	q := r.db.Model(&models.AppReview{}).Where("app_id = ?", appID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var reviews []models.AppReview
	err := q.Order("helpful_count DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepository) Update(review *models.AppReview) error {
	return r.db.Save(review).Error
}

func (r *ReviewRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.AppReview{}, id).Error
}

func (r *ReviewRepository) IncrementHelpful(id uint) error {
	return r.db.Model(&models.AppReview{}).Where("id = ?", id).
		Update("helpful_count", gorm.Expr("helpful_count + 1")).Error
}

// Stats aggregates directly over the review rows, bypassing the denormalized
// fields on the app, so callers can use it to detect drift.
func (r *ReviewRepository) Stats(appID uint) (models.ReviewStats, error) {
	stats := models.ReviewStats{Histogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	type row struct {
		Rating int
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.AppReview{}).
		Select("rating, COUNT(*) as count").
		Where("app_id = ?", appID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	var sum int64
	for _, rw := range rows {
		if rw.Rating >= 1 && rw.Rating <= 5 {
			stats.Histogram[rw.Rating] = rw.Count
		}
		stats.TotalCount += rw.Count
		sum += int64(rw.Rating) * rw.Count
	}
	if stats.TotalCount > 0 {
		stats.AverageRating = roundRating(float64(sum) / float64(stats.TotalCount))
	}
	return stats, nil
}

// RecomputeAggregate locks the app row, re-derives the mean and count from
// the stored reviews, and writes both back. The row lock serializes
// concurrent review writes for the same app.
func (r *ReviewRepository) RecomputeAggregate(appID uint) (float64, int, error) {
	var rating float64
	var count int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var app models.App
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, appID).Error; err != nil {
			return err
		}

		type agg struct {
			Count int64
			Avg   float64
		}
		var a agg
		if err := tx.Model(&models.AppReview{}).
			Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as avg").
			Where("app_id = ?", appID).
			Scan(&a).Error; err != nil {
			return err
		}

		rating = roundRating(a.Avg)
		count = int(a.Count)

		return tx.Model(&models.App{}).Where("id = ?", appID).Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": count,
		}).Error
	})

	return rating, count, err
}

func roundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}
