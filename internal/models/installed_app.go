package models

import (
	"time"
)

// InstalledApp records one app installed for one user within one organization.
// The (user, organization, app) triple is unique; uninstall hard-deletes the
// row rather than soft-marking it.
type InstalledApp struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID           uint `gorm:"not null;uniqueIndex:idx_install_triple" json:"user_id"`
	OrganizationID   uint `gorm:"not null;uniqueIndex:idx_install_triple" json:"organization_id"`
	AppID            uint `gorm:"not null;uniqueIndex:idx_install_triple" json:"app_id"`

	InstalledVersion string     `gorm:"not null" json:"installed_version"`
	AutoUpdate       bool       `gorm:"default:true" json:"auto_update"`
	Pinned           bool       `gorm:"default:false" json:"pinned"`
	SortOrder        int        `gorm:"default:0" json:"sort_order"`
	LaunchCount      int64      `gorm:"default:0" json:"launch_count"`
	LastUsedAt       *time.Time `json:"last_used_at"`
	LastUpdatedAt    *time.Time `json:"last_updated_at"`
	Settings         string     `gorm:"type:text" json:"settings"` // opaque JSON blob

	App App `gorm:"foreignKey:AppID" json:"-"`
}

// AppUpdateRecord is one entry of an installation's update history.
type AppUpdateRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InstalledAppID uint   `gorm:"index;not null" json:"installed_app_id"`
	AppID          uint   `gorm:"index;not null" json:"app_id"`
	UserID         uint   `gorm:"not null" json:"user_id"`
	FromVersion    string `gorm:"not null" json:"from_version"`
	ToVersion      string `gorm:"not null" json:"to_version"`
}

type InstalledAppResponse struct {
	ID               uint       `json:"id"`
	AppID            uint       `json:"app_id"`
	Slug             string     `json:"slug,omitempty"`
	Name             string     `json:"name,omitempty"`
	IconURL          string     `json:"icon_url,omitempty"`
	InstalledVersion string     `json:"installed_version"`
	AutoUpdate       bool       `json:"auto_update"`
	Pinned           bool       `json:"pinned"`
	SortOrder        int        `json:"sort_order"`
	LaunchCount      int64      `json:"launch_count"`
	LastUsedAt       *time.Time `json:"last_used_at"`
	LastUpdatedAt    *time.Time `json:"last_updated_at"`
	Settings         string     `json:"settings"`
}

func (i *InstalledApp) ToResponse() InstalledAppResponse {
	resp := InstalledAppResponse{
		ID:               i.ID,
		AppID:            i.AppID,
		InstalledVersion: i.InstalledVersion,
		AutoUpdate:       i.AutoUpdate,
		Pinned:           i.Pinned,
		SortOrder:        i.SortOrder,
		LaunchCount:      i.LaunchCount,
		LastUsedAt:       i.LastUsedAt,
		LastUpdatedAt:    i.LastUpdatedAt,
		Settings:         i.Settings,
	}
	if i.App.ID != 0 {
		resp.Slug = i.App.Slug
		resp.Name = i.App.Name
		resp.IconURL = i.App.IconURL
	}
	return resp
}
