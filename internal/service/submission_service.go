package service

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/validation"
	"gorm.io/gorm"
)

// SubmissionNotifier is the outbound notification collaborator. Calls are
// fire-and-forget: implementations must never block the submission and
// their failures are logged, not returned.
type SubmissionNotifier interface {
	NotifySubmission(sub *models.AppSubmission)
}

type SubmissionService struct {
	appRepo        repository.AppRepositoryInterface
	versionRepo    repository.VersionRepositoryInterface
	submissionRepo repository.SubmissionRepositoryInterface
	developerRepo  repository.DeveloperRepositoryInterface
	notifier       SubmissionNotifier
}

func NewSubmissionService(
	appRepo repository.AppRepositoryInterface,
	versionRepo repository.VersionRepositoryInterface,
	submissionRepo repository.SubmissionRepositoryInterface,
	developerRepo repository.DeveloperRepositoryInterface,
	notifier SubmissionNotifier,
) *SubmissionService {
	return &SubmissionService{
		appRepo:        appRepo,
		versionRepo:    versionRepo,
		submissionRepo: submissionRepo,
		developerRepo:  developerRepo,
		notifier:       notifier,
	}
}

type CreateAppInput struct {
	Slug               string   `json:"slug"`
	Name               string   `json:"name"`
	ShortDescription   string   `json:"short_description"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Price              float64  `json:"price"`
	Currency           string   `json:"currency"`
	Permissions        []string `json:"permissions"`
	MinPlatformVersion string   `json:"min_platform_version"`
}

// CreateApp creates a DRAFT catalog entry at version 0.0.0. The quota is
// checked against the developer's published-app count, so a FREE developer
// with three published apps cannot start a fourth.
func (s *SubmissionService) CreateApp(userID uint, input CreateAppInput) (*models.App, error) {
	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}

	if limit := dev.Tier.PublishLimit(); limit >= 0 && dev.PublishedApps >= limit {
		return nil, ErrQuotaExceeded
	}

	slug := validation.NormalizeSlug(input.Slug)
	if !validation.ValidateSlug(slug) {
		return nil, ErrInvalidSlug
	}
	// Slug uniqueness spans every status, not just published apps.
	if _, err := s.appRepo.FindBySlug(slug); err == nil {
		return nil, ErrDuplicateSlug
	}

	app := &models.App{
		Slug:               slug,
		Name:               validation.TrimAndLimit(input.Name, 120),
		ShortDescription:   validation.TrimAndLimit(input.ShortDescription, 200),
		Description:        input.Description,
		DeveloperID:        dev.ID,
		Category:           input.Category,
		Tags:               models.JoinList(input.Tags),
		CurrentVersion:     "0.0.0",
		Price:              input.Price,
		Currency:           input.Currency,
		Status:             models.AppDraft,
		Permissions:        models.JoinList(input.Permissions),
		MinPlatformVersion: input.MinPlatformVersion,
	}
	if app.Currency == "" {
		app.Currency = "USD"
	}
	if err := s.appRepo.Create(app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}

	if err := s.developerRepo.IncrementTotalApps(dev.ID, 1); err != nil {
		return nil, err
	}
	return app, nil
}

type UpdateAppInput struct {
	Name               string   `json:"name"`
	ShortDescription   string   `json:"short_description"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Price              *float64 `json:"price"`
	Permissions        []string `json:"permissions"`
	MinPlatformVersion string   `json:"min_platform_version"`
}

// UpdateAppDetails edits the listing. Only DRAFT and REJECTED are editable;
// anything in or past review is locked.
func (s *SubmissionService) UpdateAppDetails(userID, appID uint, input UpdateAppInput) (*models.App, error) {
	app, dev, err := s.ownedApp(userID, appID)
	if err != nil {
		return nil, err
	}
	_ = dev

	if !app.Status.Editable() {
		return nil, ErrInReviewLocked
	}

	if input.Name != "" {
		app.Name = validation.TrimAndLimit(input.Name, 120)
	}
	if input.ShortDescription != "" {
		app.ShortDescription = validation.TrimAndLimit(input.ShortDescription, 200)
	}
	if input.Description != "" {
		app.Description = input.Description
	}
	if input.Category != "" {
		app.Category = input.Category
	}
	if input.Tags != nil {
		app.Tags = models.JoinList(input.Tags)
	}
	if input.Price != nil {
		app.Price = *input.Price
	}
	if input.Permissions != nil {
		app.Permissions = models.JoinList(input.Permissions)
	}
	if input.MinPlatformVersion != "" {
		app.MinPlatformVersion = input.MinPlatformVersion
	}

	if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}
	return app, nil
}

type SubmitVersionInput struct {
	Version            string `json:"version"`
	ReleaseNotes       string `json:"release_notes"`
	PackageURL         string `json:"package_url"`
	PackageSize        int64  `json:"package_size"`
	MinPlatformVersion string `json:"min_platform_version"`
}

// SubmitVersion records one submission event: an audit row plus a draft,
// non-current version row. The outbound notification is fire-and-forget; its
// failure never rolls back the submission.
func (s *SubmissionService) SubmitVersion(userID, appID uint, input SubmitVersionInput) (*models.AppSubmission, error) {
	app, dev, err := s.ownedApp(userID, appID)
	if err != nil {
		return nil, err
	}

	if app.Status == models.AppPendingReview {
		return nil, ErrInReviewLocked
	}
	if !validation.ValidateVersion(input.Version) {
		return nil, ErrInvalidVersion
	}
	if _, err := s.versionRepo.FindByAppAndVersion(appID, input.Version); err == nil {
		return nil, ErrDuplicateVersion
	}

	sub := &models.AppSubmission{
		AppID:        appID,
		DeveloperID:  dev.ID,
		Version:      input.Version,
		ReleaseNotes: input.ReleaseNotes,
		PackageURL:   input.PackageURL,
		PackageSize:  input.PackageSize,
		Status:       models.SubmissionSubmitted,
		SubmittedAt:  time.Now(),
	}
	if err := s.submissionRepo.Create(sub); err != nil {
		return nil, err
	}

	version := &models.AppVersion{
		AppID:              appID,
		Version:            input.Version,
		ReleaseNotes:       input.ReleaseNotes,
		PackageURL:         input.PackageURL,
		PackageSize:        input.PackageSize,
		MinPlatformVersion: input.MinPlatformVersion,
		Status:             models.VersionDraft,
		IsCurrentVersion:   false,
	}
	if err := s.versionRepo.Create(version); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVersion
		}
		return nil, err
	}

	// A published app keeps serving while the new version is reviewed.
	if app.Status == models.AppDraft || app.Status == models.AppRejected {
		if err := s.appRepo.SetStatus(appID, models.AppPendingReview); err != nil {
			return nil, err
		}
	}

	if s.notifier != nil {
		s.notifier.NotifySubmission(sub)
	}
	return sub, nil
}

// StartReview moves a submission into IN_REVIEW. Admin-side.
func (s *SubmissionService) StartReview(submissionID uint) (*models.AppSubmission, error) {
	sub, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status != models.SubmissionSubmitted {
		return nil, ErrInvalidState
	}
	sub.Status = models.SubmissionInReview
	if err := s.submissionRepo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ApproveSubmission marks the submission approved and mirrors the decision
// onto the app. Admin-side.
func (s *SubmissionService) ApproveSubmission(submissionID uint, note string) (*models.AppSubmission, error) {
	return s.decide(submissionID, models.SubmissionApproved, models.AppApproved, note)
}

// RejectSubmission returns the app to an editable state. Admin-side.
func (s *SubmissionService) RejectSubmission(submissionID uint, note string) (*models.AppSubmission, error) {
	return s.decide(submissionID, models.SubmissionRejected, models.AppRejected, note)
}

func (s *SubmissionService) decide(submissionID uint, subStatus models.SubmissionStatus, appStatus models.AppStatus, note string) (*models.AppSubmission, error) {
	sub, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status != models.SubmissionSubmitted && sub.Status != models.SubmissionInReview {
		return nil, ErrInvalidState
	}

	now := time.Now()
	sub.Status = subStatus
	sub.ReviewNote = note
	sub.ReviewedAt = &now
	if err := s.submissionRepo.Update(sub); err != nil {
		return nil, err
	}

	app, err := s.appRepo.FindByID(sub.AppID)
	if err != nil {
		return nil, ErrAppNotFound
	}
	// Never demote a published app; its next version's fate lives on the
	// submission row.
	if app.Status != models.AppPublished {
		if err := s.appRepo.SetStatus(app.ID, appStatus); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// PublishApp flips the latest version to published/current, promotes the app
// to PUBLISHED, copies the package reference onto the listing, and counts the
// publication against the developer's tier quota.
func (s *SubmissionService) PublishApp(userID, appID uint) (*models.App, error) {
	app, dev, err := s.ownedApp(userID, appID)
	if err != nil {
		return nil, err
	}

	if app.Status != models.AppApproved {
		return nil, ErrNotApproved
	}
	if limit := dev.Tier.PublishLimit(); limit >= 0 && dev.PublishedApps >= limit {
		return nil, ErrQuotaExceeded
	}

	version, err := s.versionRepo.Latest(appID)
	if err != nil {
		return nil, ErrNoVersionFound
	}

	now := time.Now()
	if err := s.versionRepo.Publish(appID, version.ID, now); err != nil {
		return nil, err
	}

	app.Status = models.AppPublished
	app.CurrentVersion = version.Version
	app.PackageURL = version.PackageURL
	app.PublishedAt = &now
	if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}

	if err := s.developerRepo.IncrementPublishedApps(dev.ID, 1); err != nil {
		return nil, err
	}
	return app, nil
}

// WithdrawSubmission lets the developer pull a pending submission back.
func (s *SubmissionService) WithdrawSubmission(userID, submissionID uint) (*models.AppSubmission, error) {
	sub, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}

	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil || dev.ID != sub.DeveloperID {
		return nil, ErrUnauthorized
	}
	if sub.Status != models.SubmissionSubmitted && sub.Status != models.SubmissionInReview {
		return nil, ErrInvalidState
	}

	sub.Status = models.SubmissionWithdrawn
	if err := s.submissionRepo.Update(sub); err != nil {
		return nil, err
	}

	if app, err := s.appRepo.FindByID(sub.AppID); err == nil && app.Status == models.AppPendingReview {
		_ = s.appRepo.SetStatus(app.ID, models.AppDraft)
	}
	return sub, nil
}

// DeleteApp is only permitted while the app is still editable. It cascades:
// versions first, then the app, then the developer's total-app counter.
func (s *SubmissionService) DeleteApp(userID, appID uint) error {
	app, dev, err := s.ownedApp(userID, appID)
	if err != nil {
		return err
	}
	if !app.Status.Editable() {
		return ErrInReviewLocked
	}

	if err := s.versionRepo.DeleteByApp(appID); err != nil {
		return err
	}
	if err := s.appRepo.Delete(appID); err != nil {
		return err
	}
	return s.developerRepo.IncrementTotalApps(dev.ID, -1)
}

// GetOwnedApp resolves an app the acting user's developer account owns.
// Upload endpoints use it as their authorization gate.
func (s *SubmissionService) GetOwnedApp(userID, appID uint) (*models.App, error) {
	app, _, err := s.ownedApp(userID, appID)
	return app, err
}

// SetAppIcon records the uploaded icon's object URL on the listing. Unlike
// text edits this is allowed in any state; a fresh icon never needs re-review.
func (s *SubmissionService) SetAppIcon(userID, appID uint, iconURL string) (*models.App, error) {
	app, _, err := s.ownedApp(userID, appID)
	if err != nil {
		return nil, err
	}
	app.IconURL = iconURL
	if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}
	return app, nil
}

// AddAppScreenshot appends one screenshot URL to the listing gallery.
func (s *SubmissionService) AddAppScreenshot(userID, appID uint, url string) (*models.App, error) {
	app, _, err := s.ownedApp(userID, appID)
	if err != nil {
		return nil, err
	}
	shots := append(app.ScreenshotList(), url)
	app.Screenshots = models.JoinList(shots)
	if err := s.appRepo.Update(app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *SubmissionService) ListSubmissionsByApp(userID, appID uint) ([]models.AppSubmission, error) {
	if _, _, err := s.ownedApp(userID, appID); err != nil {
		return nil, err
	}
	return s.submissionRepo.ListByApp(appID)
}

func (s *SubmissionService) ListSubmissionsByDeveloper(userID uint) ([]models.AppSubmission, error) {
	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	return s.submissionRepo.ListByDeveloper(dev.ID)
}

// ReviewQueue lists submissions waiting on an admin decision.
func (s *SubmissionService) ReviewQueue(limit int) ([]models.AppSubmission, error) {
	return s.submissionRepo.ListByStatus(models.SubmissionSubmitted, limit)
}

func (s *SubmissionService) ListDeveloperApps(userID uint) ([]models.App, error) {
	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	return s.appRepo.ListByDeveloper(dev.ID)
}

// ownedApp resolves the app and the acting user's developer record, failing
// with ErrUnauthorized when the user does not own the app.
func (s *SubmissionService) ownedApp(userID, appID uint) (*models.App, *models.Developer, error) {
	app, err := s.appRepo.FindByID(appID)
	if err != nil {
		return nil, nil, ErrAppNotFound
	}
	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil {
		return nil, nil, ErrDeveloperNotFound
	}
	if app.DeveloperID != dev.ID {
		return nil, nil, ErrUnauthorized
	}
	return app, dev, nil
}
