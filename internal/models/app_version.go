package models

import (
	"time"
)

type VersionStatus string

const (
	VersionDraft     VersionStatus = "draft"
	VersionPublished VersionStatus = "published"
)

// AppVersion is one release artifact of an App. Version strings are unique
// within an app and, once published, immutable apart from IsCurrentVersion
// and PublishedAt. At most one version per app carries IsCurrentVersion.
type AppVersion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AppID              uint          `gorm:"not null;uniqueIndex:idx_app_version" json:"app_id"`
	Version            string        `gorm:"type:varchar(20);not null;uniqueIndex:idx_app_version" json:"version"`
	ReleaseNotes       string        `gorm:"type:text" json:"release_notes"`
	PackageURL         string        `gorm:"type:text" json:"package_url"`
	PackageSize        int64         `gorm:"default:0" json:"package_size"`
	MinPlatformVersion string        `json:"min_platform_version"`
	Status             VersionStatus `gorm:"type:varchar(20);not null;default:draft" json:"status"`
	IsCurrentVersion   bool          `gorm:"default:false;index" json:"is_current_version"`
	PublishedAt        *time.Time    `json:"published_at"`
}

func (AppVersion) TableName() string {
	return "app_versions"
}
