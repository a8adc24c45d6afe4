package repository

import (
	"fmt"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var eventColumns = map[string]string{
	"download":  "downloads",
	"install":   "installations",
	"uninstall": "uninstalls",
	"launch":    "launches",
}

func (r *AnalyticsRepository) AddEvent(appID uint, day time.Time, eventType string) error {
	column, ok := eventColumns[eventType]
	if !ok {
		return fmt.Errorf("unknown analytics event type: %s", eventType)
	}
	day = Day(day)
	if err := r.ensureDay(appID, day); err != nil {
		return err
	}
	return r.db.Model(&models.DeveloperAnalytics{}).
		Where("app_id = ? AND date = ?", appID, day).
		Update(column, gorm.Expr(column+" + 1")).Error
}

// RecordCrash bumps the crash counter and recomputes the running rate inside
// a transaction holding the row lock, so concurrent crash reports cannot
// interleave their read-modify-write. The crash itself counts as one more
// session in the denominator, so one crash after nine clean launches yields
// a rate of 0.1.
func (r *AnalyticsRepository) RecordCrash(appID uint, day time.Time) (float64, error) {
	day = Day(day)
	if err := r.ensureDay(appID, day); err != nil {
		return 0, err
	}

	var rate float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row models.DeveloperAnalytics
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("app_id = ? AND date = ?", appID, day).
			First(&row).Error; err != nil {
			return err
		}

		crashes := row.CrashCount + 1
		rate = float64(crashes) / float64(row.Launches+1)

		return tx.Model(&models.DeveloperAnalytics{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"crash_count": crashes,
				"crash_rate":  rate,
			}).Error
	})
	return rate, err
}

func (r *AnalyticsRepository) AddRevenue(appID uint, day time.Time, amount float64, refund bool) error {
	day = Day(day)
	if err := r.ensureDay(appID, day); err != nil {
		return err
	}
	// Refunds accumulate separately so both gross figures survive.
	column := "revenue"
	if refund {
		column = "refunds"
	}
	return r.db.Model(&models.DeveloperAnalytics{}).
		Where("app_id = ? AND date = ?", appID, day).
		Update(column, gorm.Expr(column+" + ?", amount)).Error
}

func (r *AnalyticsRepository) AddSession(appID uint, day time.Time, seconds float64) error {
	day = Day(day)
	if err := r.ensureDay(appID, day); err != nil {
		return err
	}
	return r.db.Model(&models.DeveloperAnalytics{}).
		Where("app_id = ? AND date = ?", appID, day).
		Updates(map[string]interface{}{
			"session_duration_sum": gorm.Expr("session_duration_sum + ?", seconds),
			"session_count":        gorm.Expr("session_count + 1"),
		}).Error
}

func (r *AnalyticsRepository) SetPeakActiveUsers(appID uint, day time.Time, count int64) error {
	day = Day(day)
	if err := r.ensureDay(appID, day); err != nil {
		return err
	}
	// Keep the daily peak, never lower it.
	return r.db.Model(&models.DeveloperAnalytics{}).
		Where("app_id = ? AND date = ? AND active_users < ?", appID, day, count).
		Update("active_users", count).Error
}

func (r *AnalyticsRepository) Range(appID uint, from, to time.Time) ([]models.DeveloperAnalytics, error) {
	var rows []models.DeveloperAnalytics
	err := r.db.Where("app_id = ? AND date >= ? AND date <= ?", appID, Day(from), Day(to)).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

// ensureDay lazily creates the per-day row. The (app, date) unique index
// makes the create idempotent under concurrent first events.
func (r *AnalyticsRepository) ensureDay(appID uint, day time.Time) error {
	row := models.DeveloperAnalytics{AppID: appID, Date: day}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil && err != gorm.ErrDuplicatedKey {
		return err
	}
	return nil
}
