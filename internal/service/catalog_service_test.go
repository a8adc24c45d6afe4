package service

import (
	"errors"
	"testing"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *MockAppRepository, *MockVersionRepository) {
	t.Helper()
	appRepo := NewMockAppRepository()
	versionRepo := NewMockVersionRepository()
	return NewCatalogService(appRepo, versionRepo), appRepo, versionRepo
}

func seedApp(repo *MockAppRepository, slug string, status models.AppStatus) *models.App {
	app := &models.App{Slug: slug, Name: slug, Status: status, CurrentVersion: "1.0.0"}
	repo.Create(app)
	return app
}

// Only published apps are externally visible; every other status reads as
// not found through the catalog.
func TestGetAppVisibility(t *testing.T) {
	svc, appRepo, _ := newCatalogFixture(t)

	published := seedApp(appRepo, "widget-pro", models.AppPublished)
	hidden := []*models.App{
		seedApp(appRepo, "draft-app", models.AppDraft),
		seedApp(appRepo, "pending-app", models.AppPendingReview),
		seedApp(appRepo, "approved-app", models.AppApproved),
		seedApp(appRepo, "rejected-app", models.AppRejected),
		seedApp(appRepo, "suspended-app", models.AppSuspended),
	}

	if _, err := svc.GetApp(published.ID); err != nil {
		t.Errorf("published app should be visible: %v", err)
	}
	if _, err := svc.GetAppBySlug("widget-pro"); err != nil {
		t.Errorf("published app should resolve by slug: %v", err)
	}

	for _, app := range hidden {
		if _, err := svc.GetApp(app.ID); !errors.Is(err, ErrAppNotFound) {
			t.Errorf("%s: GetApp error = %v, want ErrAppNotFound", app.Status, err)
		}
		if _, err := svc.GetAppBySlug(app.Slug); !errors.Is(err, ErrAppNotFound) {
			t.Errorf("%s: GetAppBySlug error = %v, want ErrAppNotFound", app.Status, err)
		}
	}

	if _, err := svc.GetApp(999); !errors.Is(err, ErrAppNotFound) {
		t.Errorf("missing app error = %v, want ErrAppNotFound", err)
	}
}

func TestSearchApps(t *testing.T) {
	svc, appRepo, _ := newCatalogFixture(t)

	a := seedApp(appRepo, "photo-editor", models.AppPublished)
	a.Category = "media"
	a.Rating = 4.5
	a.Downloads = 100
	b := seedApp(appRepo, "photo-vault", models.AppPublished)
	b.Category = "media"
	b.Rating = 3.0
	b.Downloads = 500
	c := seedApp(appRepo, "todo-list", models.AppPublished)
	c.Category = "productivity"
	c.Rating = 4.9
	seedApp(appRepo, "photo-draft", models.AppDraft)

	apps, total, err := svc.SearchApps(repository.AppSearchFilter{Query: "photo"})
	if err != nil {
		t.Fatalf("SearchApps failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2 (drafts excluded)", total)
	}
	// Popularity order.
	if apps[0].Slug != "photo-vault" {
		t.Errorf("first result = %q, want photo-vault by downloads", apps[0].Slug)
	}

	apps, _, _ = svc.SearchApps(repository.AppSearchFilter{Category: "media", MinRating: 4.0})
	if len(apps) != 1 || apps[0].Slug != "photo-editor" {
		t.Errorf("rating-filtered search returned wrong set")
	}
}

func TestCatalogLists(t *testing.T) {
	svc, appRepo, _ := newCatalogFixture(t)

	featured := seedApp(appRepo, "featured-app", models.AppPublished)
	featured.IsFeatured = true
	trending := seedApp(appRepo, "trending-app", models.AppPublished)
	trending.Trending = true
	fresh := seedApp(appRepo, "fresh-app", models.AppPublished)
	now := time.Now()
	fresh.PublishedAt = &now
	old := seedApp(appRepo, "old-app", models.AppPublished)
	stale := now.Add(-90 * 24 * time.Hour)
	old.PublishedAt = &stale

	got, _ := svc.ListFeatured(0)
	if len(got) != 1 || got[0].Slug != "featured-app" {
		t.Errorf("featured list wrong: %v", got)
	}
	got, _ = svc.ListTrending(0)
	if len(got) != 1 || got[0].Slug != "trending-app" {
		t.Errorf("trending list wrong: %v", got)
	}
	got, _ = svc.ListNew(0)
	if len(got) != 1 || got[0].Slug != "fresh-app" {
		t.Errorf("new list should hold only apps inside the window: %v", got)
	}
}

func TestVersionHistory(t *testing.T) {
	svc, appRepo, versionRepo := newCatalogFixture(t)

	app := seedApp(appRepo, "widget-pro", models.AppPublished)
	versionRepo.Create(&models.AppVersion{AppID: app.ID, Version: "1.0.0", Status: models.VersionPublished, CreatedAt: time.Now().Add(-time.Hour)})
	versionRepo.Create(&models.AppVersion{AppID: app.ID, Version: "1.1.0", Status: models.VersionPublished, IsCurrentVersion: true, CreatedAt: time.Now()})

	history, err := svc.GetVersionHistory(app.ID)
	if err != nil {
		t.Fatalf("GetVersionHistory failed: %v", err)
	}
	if len(history) != 2 || history[0].Version != "1.1.0" {
		t.Errorf("history should be newest first, got %v", history)
	}

	current, err := svc.GetCurrentVersion(app.ID)
	if err != nil || current.Version != "1.1.0" {
		t.Errorf("current version = %v err = %v, want 1.1.0", current, err)
	}

	if _, err := svc.GetCurrentVersion(999); !errors.Is(err, ErrNoVersionFound) {
		t.Errorf("missing current version error = %v, want ErrNoVersionFound", err)
	}
}

func TestIsUpdateAvailable(t *testing.T) {
	svc, appRepo, versionRepo := newCatalogFixture(t)

	app := seedApp(appRepo, "widget-pro", models.AppPublished)
	versionRepo.Create(&models.AppVersion{AppID: app.ID, Version: "1.10.0", Status: models.VersionPublished, IsCurrentVersion: true})

	tests := []struct {
		installed string
		want      bool
	}{
		{"1.9.0", true},   // numeric, not lexical
		{"1.10.0", false}, // equal is not an update
		{"1.11.0", false},
		{"0.9.9", true},
	}

	for _, tt := range tests {
		got, latest, err := svc.IsUpdateAvailable(app.ID, tt.installed)
		if err != nil {
			t.Fatalf("IsUpdateAvailable(%q) failed: %v", tt.installed, err)
		}
		if got != tt.want {
			t.Errorf("IsUpdateAvailable(%q) = %v, want %v", tt.installed, got, tt.want)
		}
		if latest.Version != "1.10.0" {
			t.Errorf("latest = %q, want 1.10.0", latest.Version)
		}
	}
}

func TestMarketplaceStats(t *testing.T) {
	svc, appRepo, _ := newCatalogFixture(t)

	a := seedApp(appRepo, "app-a", models.AppPublished)
	a.Downloads = 10
	a.Rating = 4.0
	a.IsFeatured = true
	a.Category = "media"
	b := seedApp(appRepo, "app-b", models.AppPublished)
	b.Downloads = 30
	b.Rating = 3.0
	b.Category = "media"
	seedApp(appRepo, "app-c", models.AppDraft)

	stats, err := svc.MarketplaceStats()
	if err != nil {
		t.Fatalf("MarketplaceStats failed: %v", err)
	}
	if stats.TotalApps != 2 || stats.TotalDownloads != 40 || stats.FeaturedCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageRating != 3.5 {
		t.Errorf("average rating = %v, want 3.5", stats.AverageRating)
	}

	counts, err := svc.CategoryCounts()
	if err != nil {
		t.Fatalf("CategoryCounts failed: %v", err)
	}
	if counts["media"] != 2 {
		t.Errorf("media count = %d, want 2", counts["media"])
	}
}

func TestCurationFlags(t *testing.T) {
	svc, appRepo, _ := newCatalogFixture(t)
	app := seedApp(appRepo, "widget-pro", models.AppPublished)

	if err := svc.SetFeatured(app.ID, true); err != nil || !app.IsFeatured {
		t.Errorf("SetFeatured failed: %v", err)
	}
	if err := svc.SetTrending(app.ID, true); err != nil || !app.Trending {
		t.Errorf("SetTrending failed: %v", err)
	}
	if err := svc.SetFeatured(999, true); err == nil {
		t.Error("SetFeatured on missing app should fail")
	}
}
