package service

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/validation"
	"gorm.io/gorm"
)

type ProgressStage string

const (
	StageDownloading ProgressStage = "downloading"
	StageExtracting  ProgressStage = "extracting"
	StageInstalling  ProgressStage = "installing"
	StageComplete    ProgressStage = "complete"
)

// ProgressFunc receives sequential install/update progress. It is invoked
// synchronously from real sub-steps, never from timers, and a nil sink is
// fine. Progress runs 0-100.
type ProgressFunc func(stage ProgressStage, progress int, message string)

func (f ProgressFunc) report(stage ProgressStage, progress int, message string) {
	if f != nil {
		f(stage, progress, message)
	}
}

type InstallOptions struct {
	AutoUpdate bool   `json:"auto_update"`
	Settings   string `json:"settings"`
}

// AppUpdateInfo pairs an installed app with the newer published version
// waiting for it.
type AppUpdateInfo struct {
	InstalledApp     models.InstalledApp `json:"installed_app"`
	App              models.App          `json:"app"`
	InstalledVersion string              `json:"installed_version"`
	LatestVersion    string              `json:"latest_version"`
	ReleaseNotes     string              `json:"release_notes"`
}

type InstallService struct {
	installRepo repository.InstallRepositoryInterface
	appRepo     repository.AppRepositoryInterface
	catalog     *CatalogService
	analytics   *AnalyticsService
}

func NewInstallService(
	installRepo repository.InstallRepositoryInterface,
	appRepo repository.AppRepositoryInterface,
	catalog *CatalogService,
	analytics *AnalyticsService,
) *InstallService {
	return &InstallService{
		installRepo: installRepo,
		appRepo:     appRepo,
		catalog:     catalog,
		analytics:   analytics,
	}
}

// Install creates the installation record for the (user, organization, app)
// triple, pinned to the app's current version. The record is persisted only
// once progress reaches the installing stage, so an abandoned install leaves
// nothing behind. The unique index on the triple closes the duplicate-install
// race at the store.
func (s *InstallService) Install(userID, organizationID, appID uint, opts InstallOptions, sink ProgressFunc) (*models.InstalledApp, error) {
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

	if _, err := s.installRepo.Find(userID, organizationID, appID); err == nil {
		return nil, ErrAlreadyInstalled
	}

	sink.report(StageDownloading, 25, "Downloading "+app.Name)

	version := app.CurrentVersion
	if current, err := s.catalog.GetCurrentVersion(appID); err == nil {
		version = current.Version
	}

	sink.report(StageExtracting, 50, "Extracting package")

	install := &models.InstalledApp{
		UserID:           userID,
		OrganizationID:   organizationID,
		AppID:            appID,
		InstalledVersion: version,
		AutoUpdate:       opts.AutoUpdate,
		Settings:         opts.Settings,
	}
	if err := s.installRepo.Create(install); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInstalled
		}
		return nil, err
	}

	sink.report(StageInstalling, 75, "Installing "+app.Name)

	_ = s.catalog.IncrementDownloads(appID)
	if s.analytics != nil {
		_ = s.analytics.RecordEvent(appID, EventDownload)
		_ = s.analytics.RecordEvent(appID, EventInstall)
	}

	sink.report(StageComplete, 100, app.Name+" installed")
	return install, nil
}

// Update rewrites the installed version to the latest published one and
// appends an update-history record. The installation state never changes,
// only the version.
func (s *InstallService) Update(userID, organizationID, appID uint, sink ProgressFunc) (*models.InstalledApp, error) {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return nil, ErrNotInstalled
	}

	newer, current, err := s.catalog.IsUpdateAvailable(appID, install.InstalledVersion)
	if err != nil {
		return nil, err
	}
	if !newer {
		return nil, ErrNoUpdateAvailable
	}

	sink.report(StageDownloading, 25, "Downloading update "+current.Version)
	sink.report(StageExtracting, 50, "Extracting package")

	fromVersion := install.InstalledVersion
	now := time.Now()
	install.InstalledVersion = current.Version
	install.LastUpdatedAt = &now
	if err := s.installRepo.Update(install); err != nil {
		return nil, err
	}

	sink.report(StageInstalling, 75, "Applying update")

	_ = s.installRepo.CreateUpdateRecord(&models.AppUpdateRecord{
		InstalledAppID: install.ID,
		AppID:          appID,
		UserID:         userID,
		FromVersion:    fromVersion,
		ToVersion:      current.Version,
	})

	sink.report(StageComplete, 100, "Updated to "+current.Version)
	return install, nil
}

// Uninstall hard-deletes the installation record. System apps are protected.
func (s *InstallService) Uninstall(userID, organizationID, appID uint) error {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return ErrNotInstalled
	}

	if app, err := s.appRepo.FindByID(appID); err == nil && app.IsSystemApp {
		return ErrSystemAppProtected
	}

	if err := s.installRepo.Delete(install.ID); err != nil {
		return err
	}

	if s.analytics != nil {
		_ = s.analytics.RecordEvent(appID, EventUninstall)
	}
	return nil
}

// LaunchApp is the sole usage-tracking entry point: it bumps the launch
// counter atomically and refreshes the last-used timestamp.
func (s *InstallService) LaunchApp(userID, organizationID, appID uint) error {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return ErrNotInstalled
	}

	if err := s.installRepo.IncrementLaunch(install.ID, time.Now()); err != nil {
		return err
	}

	if s.analytics != nil {
		_ = s.analytics.RecordEvent(appID, EventLaunch)
	}
	return nil
}

func (s *InstallService) TogglePin(userID, organizationID, appID uint) (*models.InstalledApp, error) {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return nil, ErrNotInstalled
	}
	install.Pinned = !install.Pinned
	if err := s.installRepo.Update(install); err != nil {
		return nil, err
	}
	return install, nil
}

func (s *InstallService) UpdateAppSettings(userID, organizationID, appID uint, settings string) (*models.InstalledApp, error) {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return nil, ErrNotInstalled
	}
	install.Settings = settings
	if err := s.installRepo.Update(install); err != nil {
		return nil, err
	}
	return install, nil
}

func (s *InstallService) SetSortOrder(userID, organizationID, appID uint, sortOrder int) (*models.InstalledApp, error) {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return nil, ErrNotInstalled
	}
	install.SortOrder = sortOrder
	if err := s.installRepo.Update(install); err != nil {
		return nil, err
	}
	return install, nil
}

func (s *InstallService) ListInstalled(userID, organizationID uint) ([]models.InstalledApp, error) {
	return s.installRepo.ListByScope(userID, organizationID)
}

func (s *InstallService) GetUpdateHistory(userID, organizationID, appID uint) ([]models.AppUpdateRecord, error) {
	install, err := s.installRepo.Find(userID, organizationID, appID)
	if err != nil {
		return nil, ErrNotInstalled
	}
	return s.installRepo.ListUpdateRecords(install.ID)
}

// CheckForUpdates returns every installation in the scope whose latest
// published version is strictly newer than the installed one; equal versions
// are excluded.
func (s *InstallService) CheckForUpdates(userID, organizationID uint) ([]AppUpdateInfo, error) {
	installs, err := s.installRepo.ListByScope(userID, organizationID)
	if err != nil {
		return nil, err
	}

	updates := []AppUpdateInfo{}
	for _, install := range installs {
		current, err := s.catalog.GetCurrentVersion(install.AppID)
		if err != nil {
			continue
		}
		if !validation.IsNewerVersion(current.Version, install.InstalledVersion) {
			continue
		}
		info := AppUpdateInfo{
			InstalledApp:     install,
			App:              install.App,
			InstalledVersion: install.InstalledVersion,
			LatestVersion:    current.Version,
			ReleaseNotes:     current.ReleaseNotes,
		}
		updates = append(updates, info)
	}
	return updates, nil
}
