package models

import (
	"time"
)

// DeveloperAnalytics holds one app's counters for one calendar day. Rows are
// created lazily on the first event of the day and never deleted.
type DeveloperAnalytics struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AppID uint      `gorm:"not null;uniqueIndex:idx_analytics_app_day" json:"app_id"`
	Date  time.Time `gorm:"type:date;not null;uniqueIndex:idx_analytics_app_day" json:"date"`

	Downloads     int64   `gorm:"default:0" json:"downloads"`
	Installations int64   `gorm:"default:0" json:"installations"`
	Uninstalls    int64   `gorm:"default:0" json:"uninstalls"`
	Launches      int64   `gorm:"default:0" json:"launches"`
	ActiveUsers   int64   `gorm:"default:0" json:"active_users"` // daily peak
	Revenue       float64 `gorm:"default:0" json:"revenue"`
	Refunds       float64 `gorm:"default:0" json:"refunds"`

	SessionDurationSum float64 `gorm:"default:0" json:"session_duration_sum"` // seconds
	SessionCount       int64   `gorm:"default:0" json:"session_count"`

	CrashCount int64   `gorm:"default:0" json:"crash_count"`
	CrashRate  float64 `gorm:"default:0" json:"crash_rate"`
}

func (DeveloperAnalytics) TableName() string {
	return "developer_analytics"
}

// AnalyticsSummary aggregates daily rows over a range: additive metrics are
// summed, crash rate is averaged, and active users is the daily peak maximum.
type AnalyticsSummary struct {
	AppID          uint    `json:"app_id"`
	Days           int     `json:"days"`
	Downloads      int64   `json:"downloads"`
	Installations  int64   `json:"installations"`
	Uninstalls     int64   `json:"uninstalls"`
	Launches       int64   `json:"launches"`
	PeakActiveUsers int64  `json:"peak_active_users"`
	Revenue        float64 `json:"revenue"`
	Refunds        float64 `json:"refunds"`
	AvgSessionSecs float64 `json:"avg_session_secs"`
	AvgCrashRate   float64 `json:"avg_crash_rate"`
}
