package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

// Map-backed mock repositories implementing the repository interfaces so the
// services can be exercised without a live store.

type MockAppRepository struct {
	apps   map[uint]*models.App
	nextID uint
}

func NewMockAppRepository() *MockAppRepository {
	return &MockAppRepository{apps: make(map[uint]*models.App), nextID: 1}
}

func (m *MockAppRepository) Create(app *models.App) error {
	for _, a := range m.apps {
		if a.Slug == app.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if app.ID == 0 {
		app.ID = m.nextID
		m.nextID++
	}
	m.apps[app.ID] = app
	return nil
}

func (m *MockAppRepository) FindByID(id uint) (*models.App, error) {
	if app, ok := m.apps[id]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAppRepository) FindBySlug(slug string) (*models.App, error) {
	for _, app := range m.apps {
		if app.Slug == slug {
			return app, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAppRepository) published() []models.App {
	var out []models.App
	for _, app := range m.apps {
		if app.Status == models.AppPublished {
			out = append(out, *app)
		}
	}
	return out
}

func (m *MockAppRepository) Search(filter repository.AppSearchFilter) ([]models.App, int64, error) {
	var out []models.App
	for _, app := range m.published() {
		if filter.Query != "" && !strings.Contains(strings.ToLower(app.Name), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.Category != "" && app.Category != filter.Category {
			continue
		}
		if filter.MinRating > 0 && app.Rating < filter.MinRating {
			continue
		}
		if filter.Featured && !app.IsFeatured {
			continue
		}
		if filter.Trending && !app.Trending {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Downloads > out[j].Downloads })
	return out, int64(len(out)), nil
}

func (m *MockAppRepository) ListByCategory(category string, limit, offset int) ([]models.App, error) {
	var out []models.App
	for _, app := range m.published() {
		if app.Category == category {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (m *MockAppRepository) ListFeatured(limit int) ([]models.App, error) {
	var out []models.App
	for _, app := range m.published() {
		if app.IsFeatured {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *MockAppRepository) ListTrending(limit int) ([]models.App, error) {
	var out []models.App
	for _, app := range m.published() {
		if app.Trending {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Downloads != out[j].Downloads {
			return out[i].Downloads > out[j].Downloads
		}
		return out[i].Rating > out[j].Rating
	})
	return out, nil
}

func (m *MockAppRepository) ListNew(since time.Time, limit int) ([]models.App, error) {
	var out []models.App
	for _, app := range m.published() {
		if app.PublishedAt != nil && !app.PublishedAt.Before(since) {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *MockAppRepository) ListByDeveloper(developerID uint) ([]models.App, error) {
	var out []models.App
	for _, app := range m.apps {
		if app.DeveloperID == developerID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (m *MockAppRepository) Update(app *models.App) error {
	if _, ok := m.apps[app.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.apps[app.ID] = app
	return nil
}

func (m *MockAppRepository) SetStatus(appID uint, status models.AppStatus) error {
	app, ok := m.apps[appID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	app.Status = status
	return nil
}

func (m *MockAppRepository) SetFeatured(appID uint, featured bool) error {
	app, ok := m.apps[appID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	app.IsFeatured = featured
	return nil
}

func (m *MockAppRepository) SetTrending(appID uint, trending bool) error {
	app, ok := m.apps[appID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	app.Trending = trending
	return nil
}

func (m *MockAppRepository) IncrementDownloads(appID uint) error {
	app, ok := m.apps[appID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	app.Downloads++
	app.Installs++
	return nil
}

func (m *MockAppRepository) CategoryCounts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, app := range m.published() {
		counts[app.Category]++
	}
	return counts, nil
}

func (m *MockAppRepository) Stats() (repository.MarketplaceStats, error) {
	var stats repository.MarketplaceStats
	var ratingSum float64
	var rated int64
	for _, app := range m.published() {
		stats.TotalApps++
		stats.TotalDownloads += app.Downloads
		if app.IsFeatured {
			stats.FeaturedCount++
		}
		if app.Rating > 0 {
			ratingSum += app.Rating
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	return stats, nil
}

func (m *MockAppRepository) Delete(appID uint) error {
	delete(m.apps, appID)
	return nil
}

type MockVersionRepository struct {
	versions map[uint]*models.AppVersion
	nextID   uint
}

func NewMockVersionRepository() *MockVersionRepository {
	return &MockVersionRepository{versions: make(map[uint]*models.AppVersion), nextID: 1}
}

func (m *MockVersionRepository) Create(version *models.AppVersion) error {
	for _, v := range m.versions {
		if v.AppID == version.AppID && v.Version == version.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	if version.ID == 0 {
		version.ID = m.nextID
		m.nextID++
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}
	m.versions[version.ID] = version
	return nil
}

func (m *MockVersionRepository) FindByAppAndVersion(appID uint, version string) (*models.AppVersion, error) {
	for _, v := range m.versions {
		if v.AppID == appID && v.Version == version {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockVersionRepository) ListByApp(appID uint) ([]models.AppVersion, error) {
	var out []models.AppVersion
	for _, v := range m.versions {
		if v.AppID == appID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockVersionRepository) Current(appID uint) (*models.AppVersion, error) {
	for _, v := range m.versions {
		if v.AppID == appID && v.IsCurrentVersion {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockVersionRepository) Latest(appID uint) (*models.AppVersion, error) {
	var latest *models.AppVersion
	for _, v := range m.versions {
		if v.AppID != appID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) || v.ID > latest.ID {
			latest = v
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *MockVersionRepository) Publish(appID, versionID uint, publishedAt time.Time) error {
	target, ok := m.versions[versionID]
	if !ok || target.AppID != appID {
		return gorm.ErrRecordNotFound
	}
	for _, v := range m.versions {
		if v.AppID == appID {
			v.IsCurrentVersion = false
		}
	}
	target.Status = models.VersionPublished
	target.IsCurrentVersion = true
	target.PublishedAt = &publishedAt
	return nil
}

func (m *MockVersionRepository) DeleteByApp(appID uint) error {
	for id, v := range m.versions {
		if v.AppID == appID {
			delete(m.versions, id)
		}
	}
	return nil
}

type MockDeveloperRepository struct {
	developers map[uint]*models.Developer
	nextID     uint
}

func NewMockDeveloperRepository() *MockDeveloperRepository {
	return &MockDeveloperRepository{developers: make(map[uint]*models.Developer), nextID: 1}
}

func (m *MockDeveloperRepository) Create(dev *models.Developer) error {
	for _, d := range m.developers {
		if d.UserID == dev.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if dev.ID == 0 {
		dev.ID = m.nextID
		m.nextID++
	}
	m.developers[dev.ID] = dev
	return nil
}

func (m *MockDeveloperRepository) FindByID(id uint) (*models.Developer, error) {
	if dev, ok := m.developers[id]; ok {
		return dev, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDeveloperRepository) FindByUserID(userID uint) (*models.Developer, error) {
	for _, dev := range m.developers {
		if dev.UserID == userID {
			return dev, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDeveloperRepository) Update(dev *models.Developer) error {
	if _, ok := m.developers[dev.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.developers[dev.ID] = dev
	return nil
}

func (m *MockDeveloperRepository) IncrementTotalApps(developerID uint, delta int) error {
	dev, ok := m.developers[developerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	dev.TotalApps += delta
	return nil
}

func (m *MockDeveloperRepository) IncrementPublishedApps(developerID uint, delta int) error {
	dev, ok := m.developers[developerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	dev.PublishedApps += delta
	return nil
}

type MockInstallRepository struct {
	installs map[uint]*models.InstalledApp
	records  []models.AppUpdateRecord
	nextID   uint
}

func NewMockInstallRepository() *MockInstallRepository {
	return &MockInstallRepository{installs: make(map[uint]*models.InstalledApp), nextID: 1}
}

func (m *MockInstallRepository) Create(install *models.InstalledApp) error {
	for _, i := range m.installs {
		if i.UserID == install.UserID && i.OrganizationID == install.OrganizationID && i.AppID == install.AppID {
			return gorm.ErrDuplicatedKey
		}
	}
	if install.ID == 0 {
		install.ID = m.nextID
		m.nextID++
	}
	m.installs[install.ID] = install
	return nil
}

func (m *MockInstallRepository) Find(userID, organizationID, appID uint) (*models.InstalledApp, error) {
	for _, i := range m.installs {
		if i.UserID == userID && i.OrganizationID == organizationID && i.AppID == appID {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockInstallRepository) ListByScope(userID, organizationID uint) ([]models.InstalledApp, error) {
	var out []models.InstalledApp
	for _, i := range m.installs {
		if i.UserID == userID && i.OrganizationID == organizationID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *MockInstallRepository) Update(install *models.InstalledApp) error {
	if _, ok := m.installs[install.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.installs[install.ID] = install
	return nil
}

func (m *MockInstallRepository) Delete(id uint) error {
	delete(m.installs, id)
	return nil
}

func (m *MockInstallRepository) IncrementLaunch(id uint, usedAt time.Time) error {
	install, ok := m.installs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	install.LaunchCount++
	install.LastUsedAt = &usedAt
	return nil
}

func (m *MockInstallRepository) ExistsForUser(userID, appID uint) (bool, error) {
	for _, i := range m.installs {
		if i.UserID == userID && i.AppID == appID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockInstallRepository) CreateUpdateRecord(rec *models.AppUpdateRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *MockInstallRepository) ListUpdateRecords(installedAppID uint) ([]models.AppUpdateRecord, error) {
	var out []models.AppUpdateRecord
	for _, rec := range m.records {
		if rec.InstalledAppID == installedAppID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// MockReviewRepository shares the app store so RecomputeAggregate can write
// the denormalized fields the way the real transaction does.
type MockReviewRepository struct {
	reviews map[uint]*models.AppReview
	apps    *MockAppRepository
	nextID  uint
}

func NewMockReviewRepository(apps *MockAppRepository) *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[uint]*models.AppReview), apps: apps, nextID: 1}
}

func (m *MockReviewRepository) Create(review *models.AppReview) error {
	for _, r := range m.reviews {
		if r.AppID == review.AppID && r.UserID == review.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if review.ID == 0 {
		review.ID = m.nextID
		m.nextID++
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *MockReviewRepository) FindByID(id uint) (*models.AppReview, error) {
	if r, ok := m.reviews[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReviewRepository) FindByAppAndUser(appID, userID uint) (*models.AppReview, error) {
	for _, r := range m.reviews {
		if r.AppID == appID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReviewRepository) ListByApp(appID uint, limit, offset int) ([]models.AppReview, int64, error) {
	var out []models.AppReview
	for _, r := range m.reviews {
		if r.AppID == appID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockReviewRepository) Update(review *models.AppReview) error {
	if _, ok := m.reviews[review.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *MockReviewRepository) Delete(id uint) error {
	delete(m.reviews, id)
	return nil
}

func (m *MockReviewRepository) IncrementHelpful(id uint) error {
	r, ok := m.reviews[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.HelpfulCount++
	return nil
}

func (m *MockReviewRepository) Stats(appID uint) (models.ReviewStats, error) {
	stats := models.ReviewStats{Histogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, r := range m.reviews {
		if r.AppID != appID {
			continue
		}
		stats.TotalCount++
		stats.Histogram[r.Rating]++
		sum += int64(r.Rating)
	}
	if stats.TotalCount > 0 {
		stats.AverageRating = math.Round(float64(sum)/float64(stats.TotalCount)*10) / 10
	}
	return stats, nil
}

func (m *MockReviewRepository) RecomputeAggregate(appID uint) (float64, int, error) {
	app, ok := m.apps.apps[appID]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	var sum, count int64
	for _, r := range m.reviews {
		if r.AppID == appID {
			sum += int64(r.Rating)
			count++
		}
	}
	rating := 0.0
	if count > 0 {
		rating = math.Round(float64(sum)/float64(count)*10) / 10
	}
	app.Rating = rating
	app.ReviewCount = int(count)
	return rating, int(count), nil
}

type MockSubmissionRepository struct {
	submissions map[uint]*models.AppSubmission
	nextID      uint
}

func NewMockSubmissionRepository() *MockSubmissionRepository {
	return &MockSubmissionRepository{submissions: make(map[uint]*models.AppSubmission), nextID: 1}
}

func (m *MockSubmissionRepository) Create(sub *models.AppSubmission) error {
	if sub.ID == 0 {
		sub.ID = m.nextID
		m.nextID++
	}
	m.submissions[sub.ID] = sub
	return nil
}

func (m *MockSubmissionRepository) FindByID(id uint) (*models.AppSubmission, error) {
	if sub, ok := m.submissions[id]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockSubmissionRepository) Update(sub *models.AppSubmission) error {
	if _, ok := m.submissions[sub.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[sub.ID] = sub
	return nil
}

func (m *MockSubmissionRepository) ListByApp(appID uint) ([]models.AppSubmission, error) {
	var out []models.AppSubmission
	for _, sub := range m.submissions {
		if sub.AppID == appID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepository) ListByDeveloper(developerID uint) ([]models.AppSubmission, error) {
	var out []models.AppSubmission
	for _, sub := range m.submissions {
		if sub.DeveloperID == developerID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepository) ListByStatus(status models.SubmissionStatus, limit int) ([]models.AppSubmission, error) {
	var out []models.AppSubmission
	for _, sub := range m.submissions {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

type MockAnalyticsRepository struct {
	rows map[string]*models.DeveloperAnalytics
}

func NewMockAnalyticsRepository() *MockAnalyticsRepository {
	return &MockAnalyticsRepository{rows: make(map[string]*models.DeveloperAnalytics)}
}

func (m *MockAnalyticsRepository) dayRow(appID uint, day time.Time) *models.DeveloperAnalytics {
	day = repository.Day(day)
	key := fmt.Sprintf("%d:%s", appID, day.Format("2006-01-02"))
	row, ok := m.rows[key]
	if !ok {
		row = &models.DeveloperAnalytics{AppID: appID, Date: day}
		m.rows[key] = row
	}
	return row
}

func (m *MockAnalyticsRepository) AddEvent(appID uint, day time.Time, eventType string) error {
	row := m.dayRow(appID, day)
	switch eventType {
	case "download":
		row.Downloads++
	case "install":
		row.Installations++
	case "uninstall":
		row.Uninstalls++
	case "launch":
		row.Launches++
	default:
		return fmt.Errorf("unknown analytics event type: %s", eventType)
	}
	return nil
}

func (m *MockAnalyticsRepository) RecordCrash(appID uint, day time.Time) (float64, error) {
	row := m.dayRow(appID, day)
	row.CrashCount++
	row.CrashRate = float64(row.CrashCount) / float64(row.Launches+1)
	return row.CrashRate, nil
}

func (m *MockAnalyticsRepository) AddRevenue(appID uint, day time.Time, amount float64, refund bool) error {
	row := m.dayRow(appID, day)
	if refund {
		row.Refunds += amount
	} else {
		row.Revenue += amount
	}
	return nil
}

func (m *MockAnalyticsRepository) AddSession(appID uint, day time.Time, seconds float64) error {
	row := m.dayRow(appID, day)
	row.SessionDurationSum += seconds
	row.SessionCount++
	return nil
}

func (m *MockAnalyticsRepository) SetPeakActiveUsers(appID uint, day time.Time, count int64) error {
	row := m.dayRow(appID, day)
	if count > row.ActiveUsers {
		row.ActiveUsers = count
	}
	return nil
}

func (m *MockAnalyticsRepository) Range(appID uint, from, to time.Time) ([]models.DeveloperAnalytics, error) {
	from, to = repository.Day(from), repository.Day(to)
	var out []models.DeveloperAnalytics
	for _, row := range m.rows {
		if row.AppID == appID && !row.Date.Before(from) && !row.Date.After(to) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
