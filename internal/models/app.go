package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type AppStatus string

const (
	AppDraft         AppStatus = "DRAFT"
	AppPendingReview AppStatus = "PENDING_REVIEW"
	AppApproved      AppStatus = "APPROVED"
	AppRejected      AppStatus = "REJECTED"
	AppPublished     AppStatus = "PUBLISHED"
)

// Editable reports whether a developer may still change the listing.
// SUBMITTED and IN_REVIEW lock the app; REJECTED re-opens it.
func (s AppStatus) Editable() bool {
	return s == AppDraft || s == AppRejected
}

type App struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Slug is immutable and unique across every status, not just published.
	Slug             string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name             string    `gorm:"not null" json:"name"`
	ShortDescription string    `json:"short_description"`
	Description      string    `gorm:"type:text" json:"description"`
	DeveloperID      uint      `gorm:"index;not null" json:"developer_id"`
	Category         string    `gorm:"index" json:"category"`
	Tags             string    `json:"tags"` // comma-separated
	CurrentVersion   string    `gorm:"default:0.0.0" json:"current_version"`
	Price            float64   `gorm:"default:0" json:"price"`
	Currency         string    `gorm:"default:USD" json:"currency"`
	IconURL          string    `json:"icon_url"`
	Screenshots      string    `gorm:"type:text" json:"screenshots"` // comma-separated URLs
	PackageURL       string    `json:"package_url"`
	Status           AppStatus `gorm:"type:varchar(20);not null;default:DRAFT;index" json:"status"`

	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	Downloads   int64   `gorm:"default:0" json:"downloads"`
	Installs    int64   `gorm:"default:0" json:"installs"`

	IsFeatured  bool `gorm:"default:false;index" json:"is_featured"`
	Trending    bool `gorm:"default:false;index" json:"trending"`
	IsSystemApp bool `gorm:"default:false" json:"is_system_app"`

	Permissions        string     `json:"permissions"` // comma-separated
	MinPlatformVersion string     `json:"min_platform_version"`
	PublishedAt        *time.Time `json:"published_at"`

	Developer Developer    `gorm:"foreignKey:DeveloperID" json:"-"`
	Versions  []AppVersion `gorm:"foreignKey:AppID" json:"-"`
}

func (a *App) TagList() []string {
	return splitList(a.Tags)
}

func (a *App) PermissionList() []string {
	return splitList(a.Permissions)
}

func (a *App) ScreenshotList() []string {
	return splitList(a.Screenshots)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinList(items []string) string {
	return strings.Join(items, ",")
}

type AppResponse struct {
	ID                 uint      `json:"id"`
	Slug               string    `json:"slug"`
	Name               string    `json:"name"`
	ShortDescription   string    `json:"short_description"`
	Description        string    `json:"description"`
	DeveloperID        uint      `json:"developer_id"`
	Category           string    `json:"category"`
	Tags               []string  `json:"tags"`
	CurrentVersion     string    `json:"current_version"`
	Price              float64   `json:"price"`
	Currency           string    `json:"currency"`
	IconURL            string    `json:"icon_url"`
	Screenshots        []string  `json:"screenshots"`
	Status             AppStatus `json:"status"`
	Rating             float64   `json:"rating"`
	ReviewCount        int       `json:"review_count"`
	Downloads          int64     `json:"downloads"`
	Installs           int64     `json:"installs"`
	IsFeatured         bool      `json:"is_featured"`
	Trending           bool      `json:"trending"`
	Permissions        []string  `json:"permissions"`
	MinPlatformVersion string    `json:"min_platform_version"`
	PublishedAt        *string   `json:"published_at"`
}

func (a *App) ToResponse() AppResponse {
	var publishedAt *string
	if a.PublishedAt != nil {
		s := a.PublishedAt.UTC().Format(time.RFC3339)
		publishedAt = &s
	}
	return AppResponse{
		ID:                 a.ID,
		Slug:               a.Slug,
		Name:               a.Name,
		ShortDescription:   a.ShortDescription,
		Description:        a.Description,
		DeveloperID:        a.DeveloperID,
		Category:           a.Category,
		Tags:               a.TagList(),
		CurrentVersion:     a.CurrentVersion,
		Price:              a.Price,
		Currency:           a.Currency,
		IconURL:            a.IconURL,
		Screenshots:        a.ScreenshotList(),
		Status:             a.Status,
		Rating:             a.Rating,
		ReviewCount:        a.ReviewCount,
		Downloads:          a.Downloads,
		Installs:           a.Installs,
		IsFeatured:         a.IsFeatured,
		Trending:           a.Trending,
		Permissions:        a.PermissionList(),
		MinPlatformVersion: a.MinPlatformVersion,
		PublishedAt:        publishedAt,
	}
}
