package models

import (
	"time"

	"gorm.io/gorm"
)

// AppReview is one user's review of one app. The (app, user) pair is unique;
// edits mutate the row in place and flip IsEdited.
type AppReview struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AppID  uint `gorm:"not null;uniqueIndex:idx_review_app_user" json:"app_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_review_app_user" json:"user_id"`

	Rating          int    `gorm:"not null" json:"rating"` // 1-5
	Title           string `json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	VersionReviewed string `json:"version_reviewed"`

	// Snapshot taken at creation time; never recomputed, even after uninstall.
	IsVerifiedPurchase bool `gorm:"default:false" json:"is_verified_purchase"`

	IsEdited     bool  `gorm:"default:false" json:"is_edited"`
	HelpfulCount int64 `gorm:"default:0" json:"helpful_count"`

	DeveloperResponse   string     `gorm:"type:text" json:"developer_response,omitempty"`
	DeveloperResponseAt *time.Time `json:"developer_response_at,omitempty"`
}

// ReviewStats is the fresh aggregate over stored reviews, computed
// independently of the denormalized fields on App so drift is detectable.
type ReviewStats struct {
	TotalCount    int64         `json:"total_count"`
	AverageRating float64       `json:"average_rating"`
	Histogram     map[int]int64 `json:"histogram"` // rating 1..5 -> count
}
