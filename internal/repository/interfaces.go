package repository

import (
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
)

// AppSearchFilter carries the catalog search parameters. Zero values mean
// "not filtered".
type AppSearchFilter struct {
	Query     string
	Category  string
	Tags      []string
	MinRating float64
	Featured  bool
	Trending  bool
	MinPrice  *float64
	MaxPrice  *float64
	Limit     int
	Offset    int
}

// MarketplaceStats is the marketplace-wide aggregate over published apps.
type MarketplaceStats struct {
	TotalApps      int64   `json:"total_apps"`
	TotalDownloads int64   `json:"total_downloads"`
	AverageRating  float64 `json:"average_rating"`
	FeaturedCount  int64   `json:"featured_count"`
}

// AppRepositoryInterface defines the contract for catalog entry operations
type AppRepositoryInterface interface {
	Create(app *models.App) error
	FindByID(id uint) (*models.App, error)
	FindBySlug(slug string) (*models.App, error)
	Search(filter AppSearchFilter) ([]models.App, int64, error)
	ListByCategory(category string, limit, offset int) ([]models.App, error)
	ListFeatured(limit int) ([]models.App, error)
	ListTrending(limit int) ([]models.App, error)
	ListNew(since time.Time, limit int) ([]models.App, error)
	ListByDeveloper(developerID uint) ([]models.App, error)
	Update(app *models.App) error
	SetStatus(appID uint, status models.AppStatus) error
	SetFeatured(appID uint, featured bool) error
	SetTrending(appID uint, trending bool) error
	// IncrementDownloads atomically bumps both the download and install
	// counters. It is the only mutation the catalog exposes.
	IncrementDownloads(appID uint) error
	CategoryCounts() (map[string]int64, error)
	Stats() (MarketplaceStats, error)
	Delete(appID uint) error
}

// VersionRepositoryInterface defines the contract for app version operations
type VersionRepositoryInterface interface {
	Create(version *models.AppVersion) error
	FindByAppAndVersion(appID uint, version string) (*models.AppVersion, error)
	ListByApp(appID uint) ([]models.AppVersion, error)
	Current(appID uint) (*models.AppVersion, error)
	Latest(appID uint) (*models.AppVersion, error)
	// Publish marks the given version published and current, clearing the
	// current flag on every other version of the app in one transaction.
	Publish(appID, versionID uint, publishedAt time.Time) error
	DeleteByApp(appID uint) error
}

// DeveloperRepositoryInterface defines the contract for developer account operations
type DeveloperRepositoryInterface interface {
	Create(dev *models.Developer) error
	FindByID(id uint) (*models.Developer, error)
	FindByUserID(userID uint) (*models.Developer, error)
	Update(dev *models.Developer) error
	IncrementTotalApps(developerID uint, delta int) error
	IncrementPublishedApps(developerID uint, delta int) error
}

// InstallRepositoryInterface defines the contract for installation records
type InstallRepositoryInterface interface {
	Create(install *models.InstalledApp) error
	Find(userID, organizationID, appID uint) (*models.InstalledApp, error)
	ListByScope(userID, organizationID uint) ([]models.InstalledApp, error)
	Update(install *models.InstalledApp) error
	Delete(id uint) error
	IncrementLaunch(id uint, usedAt time.Time) error
	// ExistsForUser reports whether the user has the app installed in any
	// organization. Feeds the verified-purchase snapshot on reviews.
	ExistsForUser(userID, appID uint) (bool, error)
	CreateUpdateRecord(rec *models.AppUpdateRecord) error
	ListUpdateRecords(installedAppID uint) ([]models.AppUpdateRecord, error)
}

// ReviewRepositoryInterface defines the contract for review operations
type ReviewRepositoryInterface interface {
	Create(review *models.AppReview) error
	FindByID(id uint) (*models.AppReview, error)
	FindByAppAndUser(appID, userID uint) (*models.AppReview, error)
	ListByApp(appID uint, limit, offset int) ([]models.AppReview, int64, error)
	Update(review *models.AppReview) error
	Delete(id uint) error
	IncrementHelpful(id uint) error
	Stats(appID uint) (models.ReviewStats, error)
	// RecomputeAggregate re-derives the denormalized rating mean and review
	// count on the app row from the stored reviews, serialized per app via a
	// row lock so concurrent review writes cannot lose updates.
	RecomputeAggregate(appID uint) (rating float64, count int, err error)
}

// SubmissionRepositoryInterface defines the contract for the submission audit trail
type SubmissionRepositoryInterface interface {
	Create(sub *models.AppSubmission) error
	FindByID(id uint) (*models.AppSubmission, error)
	Update(sub *models.AppSubmission) error
	ListByApp(appID uint) ([]models.AppSubmission, error)
	ListByDeveloper(developerID uint) ([]models.AppSubmission, error)
	ListByStatus(status models.SubmissionStatus, limit int) ([]models.AppSubmission, error)
}

// AnalyticsRepositoryInterface defines the contract for per-day metric rows.
// Implementations must make every increment atomic at the store.
type AnalyticsRepositoryInterface interface {
	AddEvent(appID uint, day time.Time, eventType string) error
	// RecordCrash bumps the crash counter and recomputes the running crash
	// rate from the pre-increment launch count, returning the new rate.
	RecordCrash(appID uint, day time.Time) (float64, error)
	AddRevenue(appID uint, day time.Time, amount float64, refund bool) error
	AddSession(appID uint, day time.Time, seconds float64) error
	SetPeakActiveUsers(appID uint, day time.Time, count int64) error
	Range(appID uint, from, to time.Time) ([]models.DeveloperAnalytics, error)
}
