package models

import (
	"time"

	"gorm.io/gorm"
)

type DeveloperTier string

const (
	TierFree       DeveloperTier = "FREE"
	TierPro        DeveloperTier = "PRO"
	TierEnterprise DeveloperTier = "ENTERPRISE"
)

// PublishLimit returns how many apps a tier may publish. A negative value
// means unbounded.
func (t DeveloperTier) PublishLimit() int {
	switch t {
	case TierPro:
		return 25
	case TierEnterprise:
		return -1
	default:
		return 3
	}
}

type DeveloperStatus string

const (
	DeveloperPending   DeveloperStatus = "PENDING"
	DeveloperActive    DeveloperStatus = "ACTIVE"
	DeveloperSuspended DeveloperStatus = "SUSPENDED"
)

type Developer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID       uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName  string          `gorm:"not null" json:"display_name"`
	CompanyName  string          `json:"company_name"`
	SupportEmail string          `gorm:"not null" json:"support_email"`
	Website      string          `json:"website"`
	Bio          string          `gorm:"type:text" json:"bio"`
	Verified     bool            `gorm:"default:false" json:"verified"`
	VerifiedAt   *time.Time      `json:"verified_at"`
	Tier         DeveloperTier   `gorm:"type:varchar(20);not null;default:FREE" json:"tier"`
	Status       DeveloperStatus `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`

	TotalApps      int     `gorm:"default:0" json:"total_apps"`
	PublishedApps  int     `gorm:"default:0" json:"published_apps"`
	TotalDownloads int64   `gorm:"default:0" json:"total_downloads"`
	TotalRevenue   float64 `gorm:"default:0" json:"total_revenue"`
	AverageRating  float64 `gorm:"default:0" json:"average_rating"`

	PaymentMethodSetup bool   `gorm:"default:false" json:"payment_method_setup"`
	PaymentAccountRef  string `json:"-"`

	Apps []App `gorm:"foreignKey:DeveloperID" json:"-"`
}

type DeveloperResponse struct {
	ID                 uint            `json:"id"`
	UserID             uint            `json:"user_id"`
	DisplayName        string          `json:"display_name"`
	CompanyName        string          `json:"company_name"`
	SupportEmail       string          `json:"support_email"`
	Website            string          `json:"website"`
	Verified           bool            `json:"verified"`
	Tier               DeveloperTier   `json:"tier"`
	Status             DeveloperStatus `json:"status"`
	TotalApps          int             `json:"total_apps"`
	PublishedApps      int             `json:"published_apps"`
	TotalDownloads     int64           `json:"total_downloads"`
	AverageRating      float64         `json:"average_rating"`
	PaymentMethodSetup bool            `json:"payment_method_setup"`
}

func (d *Developer) ToResponse() DeveloperResponse {
	return DeveloperResponse{
		ID:                 d.ID,
		UserID:             d.UserID,
		DisplayName:        d.DisplayName,
		CompanyName:        d.CompanyName,
		SupportEmail:       d.SupportEmail,
		Website:            d.Website,
		Verified:           d.Verified,
		Tier:               d.Tier,
		Status:             d.Status,
		TotalApps:          d.TotalApps,
		PublishedApps:      d.PublishedApps,
		TotalDownloads:     d.TotalDownloads,
		AverageRating:      d.AverageRating,
		PaymentMethodSetup: d.PaymentMethodSetup,
	}
}
