package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionInReview  SubmissionStatus = "IN_REVIEW"
	SubmissionApproved  SubmissionStatus = "APPROVED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
	SubmissionWithdrawn SubmissionStatus = "WITHDRAWN"
)

// AppSubmission is the audit record of one version-submission event. It is
// deliberately separate from AppVersion: the version row is the catalog-facing
// artifact, this row is the review-workflow trail feeding it.
type AppSubmission struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AppID       uint `gorm:"index;not null" json:"app_id"`
	DeveloperID uint `gorm:"index;not null" json:"developer_id"`

	Version      string           `gorm:"type:varchar(20);not null" json:"version"`
	ReleaseNotes string           `gorm:"type:text" json:"release_notes"`
	PackageURL   string           `gorm:"type:text" json:"package_url"`
	PackageSize  int64            `gorm:"default:0" json:"package_size"`
	Status       SubmissionStatus `gorm:"type:varchar(20);not null;default:SUBMITTED;index" json:"status"`
	ReviewNote   string           `gorm:"type:text" json:"review_note,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
	SubmittedAt  time.Time        `json:"submitted_at"`
}
