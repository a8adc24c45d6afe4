package service

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/validation"
	"gorm.io/gorm"
)

// newWindow is how long after publication an app counts as "new".
const newWindow = 30 * 24 * time.Hour

type CatalogService struct {
	appRepo     repository.AppRepositoryInterface
	versionRepo repository.VersionRepositoryInterface
}

func NewCatalogService(appRepo repository.AppRepositoryInterface, versionRepo repository.VersionRepositoryInterface) *CatalogService {
	return &CatalogService{appRepo: appRepo, versionRepo: versionRepo}
}

func (s *CatalogService) SearchApps(filter repository.AppSearchFilter) ([]models.App, int64, error) {
	return s.appRepo.Search(filter)
}

// GetApp returns a catalog entry by ID. Only published apps are externally
// visible; everything else reads as not found.
func (s *CatalogService) GetApp(appID uint) (*models.App, error) {
	app, err := s.appRepo.FindByID(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, err
	}
	if app.Status != models.AppPublished {
		return nil, ErrAppNotFound
	}
	return app, nil
}

func (s *CatalogService) GetAppBySlug(slug string) (*models.App, error) {
	app, err := s.appRepo.FindBySlug(validation.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, err
	}
	if app.Status != models.AppPublished {
		return nil, ErrAppNotFound
	}
	return app, nil
}

func (s *CatalogService) ListByCategory(category string, limit, offset int) ([]models.App, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.appRepo.ListByCategory(category, limit, offset)
}

func (s *CatalogService) ListFeatured(limit int) ([]models.App, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.appRepo.ListFeatured(limit)
}

func (s *CatalogService) ListTrending(limit int) ([]models.App, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.appRepo.ListTrending(limit)
}

func (s *CatalogService) ListNew(limit int) ([]models.App, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.appRepo.ListNew(time.Now().Add(-newWindow), limit)
}

func (s *CatalogService) GetVersionHistory(appID uint) ([]models.AppVersion, error) {
	if _, err := s.GetApp(appID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByApp(appID)
}

func (s *CatalogService) GetCurrentVersion(appID uint) (*models.AppVersion, error) {
	v, err := s.versionRepo.Current(appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoVersionFound
		}
		return nil, err
	}
	return v, nil
}

// IsUpdateAvailable reports whether the latest published version is strictly
// newer than installedVersion, comparing components numerically.
func (s *CatalogService) IsUpdateAvailable(appID uint, installedVersion string) (bool, *models.AppVersion, error) {
	current, err := s.GetCurrentVersion(appID)
	if err != nil {
		return false, nil, err
	}
	return validation.IsNewerVersion(current.Version, installedVersion), current, nil
}

func (s *CatalogService) CategoryCounts() (map[string]int64, error) {
	return s.appRepo.CategoryCounts()
}

func (s *CatalogService) MarketplaceStats() (repository.MarketplaceStats, error) {
	return s.appRepo.Stats()
}

// IncrementDownloads is the single mutation point the catalog exposes: one
// atomic bump of both the download and install counters.
func (s *CatalogService) IncrementDownloads(appID uint) error {
	return s.appRepo.IncrementDownloads(appID)
}

// SetFeatured and SetTrending are admin-side curation flags.
func (s *CatalogService) SetFeatured(appID uint, featured bool) error {
	return s.appRepo.SetFeatured(appID, featured)
}

func (s *CatalogService) SetTrending(appID uint, trending bool) error {
	return s.appRepo.SetTrending(appID, trending)
}
