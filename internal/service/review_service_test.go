package service

import (
	"errors"
	"testing"

	"github.com/appgrid/marketplace-backend/internal/models"
)

type reviewFixture struct {
	service     *ReviewService
	appRepo     *MockAppRepository
	reviewRepo  *MockReviewRepository
	installRepo *MockInstallRepository
	devRepo     *MockDeveloperRepository
	app         *models.App
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	appRepo := NewMockAppRepository()
	reviewRepo := NewMockReviewRepository(appRepo)
	installRepo := NewMockInstallRepository()
	devRepo := NewMockDeveloperRepository()

	dev := &models.Developer{UserID: 100, DisplayName: "Acme", SupportEmail: "dev@acme.test"}
	devRepo.Create(dev)

	app := &models.App{
		Slug:           "widget-pro",
		Name:           "Widget Pro",
		DeveloperID:    dev.ID,
		Status:         models.AppPublished,
		CurrentVersion: "1.0.0",
	}
	appRepo.Create(app)

	return &reviewFixture{
		service:     NewReviewService(reviewRepo, appRepo, installRepo, devRepo),
		appRepo:     appRepo,
		reviewRepo:  reviewRepo,
		installRepo: installRepo,
		devRepo:     devRepo,
		app:         app,
	}
}

func TestCreateReview(t *testing.T) {
	tests := []struct {
		name    string
		appID   uint
		userID  uint
		rating  int
		wantErr error
	}{
		{"Valid review", 1, 1, 4, nil},
		{"Rating too low", 1, 2, 0, ErrInvalidRating},
		{"Rating too high", 1, 2, 6, ErrInvalidRating},
		{"Unknown app", 999, 2, 4, ErrAppNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			_, err := f.service.CreateReview(tt.appID, tt.userID, CreateReviewInput{Rating: tt.rating})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateReview error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateReviewDuplicate(t *testing.T) {
	f := newReviewFixture(t)

	if _, err := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 5}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 3}); !errors.Is(err, ErrDuplicateReview) {
		t.Errorf("second review error = %v, want ErrDuplicateReview", err)
	}
}

func TestCreateReviewVerifiedPurchaseSnapshot(t *testing.T) {
	f := newReviewFixture(t)

	// User 1 has the app installed, user 2 does not.
	f.installRepo.Create(&models.InstalledApp{UserID: 1, OrganizationID: 1, AppID: f.app.ID, InstalledVersion: "1.0.0"})

	verified, err := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 5})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if !verified.IsVerifiedPurchase {
		t.Error("installed user's review should be a verified purchase")
	}

	unverified, err := f.service.CreateReview(f.app.ID, 2, CreateReviewInput{Rating: 3})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if unverified.IsVerifiedPurchase {
		t.Error("non-installed user's review should not be a verified purchase")
	}

	// The flag is a snapshot: uninstalling later does not clear it.
	f.installRepo.Delete(1)
	got, _ := f.reviewRepo.FindByID(verified.ID)
	if !got.IsVerifiedPurchase {
		t.Error("verified-purchase flag must survive uninstall")
	}
}

// The denormalized fields on the app must track the stored reviews after
// every create, update, and delete.
func TestReviewAggregateInvariant(t *testing.T) {
	f := newReviewFixture(t)

	r1, err := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 5})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if f.app.Rating != 5.0 || f.app.ReviewCount != 1 {
		t.Errorf("after first review: rating=%v count=%d, want 5.0/1", f.app.Rating, f.app.ReviewCount)
	}

	if _, err := f.service.CreateReview(f.app.ID, 2, CreateReviewInput{Rating: 4}); err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if f.app.Rating != 4.5 || f.app.ReviewCount != 2 {
		t.Errorf("after second review: rating=%v count=%d, want 4.5/2", f.app.Rating, f.app.ReviewCount)
	}

	// 5 and 2 average to 3.5; mean is rounded to one decimal.
	if _, err := f.service.CreateReview(f.app.ID, 3, CreateReviewInput{Rating: 2}); err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if f.app.Rating != 3.7 || f.app.ReviewCount != 3 {
		t.Errorf("after third review: rating=%v count=%d, want 3.7/3", f.app.Rating, f.app.ReviewCount)
	}

	if err := f.service.DeleteReview(r1.ID, 1); err != nil {
		t.Fatalf("DeleteReview failed: %v", err)
	}
	if f.app.Rating != 3.0 || f.app.ReviewCount != 2 {
		t.Errorf("after delete: rating=%v count=%d, want 3.0/2", f.app.Rating, f.app.ReviewCount)
	}
}

// Updating a review replaces its rating; the aggregate reflects only the
// latest value, never an average of both submissions.
func TestUpdateReviewReplacesRating(t *testing.T) {
	f := newReviewFixture(t)

	review, err := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 4})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}

	updated, err := f.service.UpdateReview(review.ID, 1, UpdateReviewInput{Rating: 2})
	if err != nil {
		t.Fatalf("UpdateReview failed: %v", err)
	}
	if !updated.IsEdited {
		t.Error("updated review should be flagged edited")
	}
	if f.app.Rating != 2.0 || f.app.ReviewCount != 1 {
		t.Errorf("aggregate = %v/%d, want 2.0/1", f.app.Rating, f.app.ReviewCount)
	}
}

func TestUpdateReviewAuthorization(t *testing.T) {
	f := newReviewFixture(t)

	review, _ := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 4})

	if _, err := f.service.UpdateReview(review.ID, 2, UpdateReviewInput{Rating: 1}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner update error = %v, want ErrUnauthorized", err)
	}
	if err := f.service.DeleteReview(review.ID, 2); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner delete error = %v, want ErrUnauthorized", err)
	}
}

func TestAddDeveloperResponse(t *testing.T) {
	f := newReviewFixture(t)

	review, _ := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 4})

	// User 100 owns the app's developer account; user 1 does not.
	if _, err := f.service.AddDeveloperResponse(review.ID, 1, "thanks"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner response error = %v, want ErrUnauthorized", err)
	}

	got, err := f.service.AddDeveloperResponse(review.ID, 100, "thanks for the feedback")
	if err != nil {
		t.Fatalf("AddDeveloperResponse failed: %v", err)
	}
	if got.DeveloperResponse != "thanks for the feedback" || got.DeveloperResponseAt == nil {
		t.Error("developer response not stored")
	}

	// A second response overwrites the first.
	got, err = f.service.AddDeveloperResponse(review.ID, 100, "updated reply")
	if err != nil {
		t.Fatalf("AddDeveloperResponse failed: %v", err)
	}
	if got.DeveloperResponse != "updated reply" {
		t.Errorf("second response = %q, want overwrite", got.DeveloperResponse)
	}
}

func TestMarkHelpful(t *testing.T) {
	f := newReviewFixture(t)

	review, _ := f.service.CreateReview(f.app.ID, 1, CreateReviewInput{Rating: 4})
	ratingBefore := f.app.Rating

	if err := f.service.MarkHelpful(review.ID); err != nil {
		t.Fatalf("MarkHelpful failed: %v", err)
	}
	got, _ := f.reviewRepo.FindByID(review.ID)
	if got.HelpfulCount != 1 {
		t.Errorf("helpful count = %d, want 1", got.HelpfulCount)
	}
	if f.app.Rating != ratingBefore {
		t.Error("MarkHelpful must not touch the aggregate rating")
	}

	if err := f.service.MarkHelpful(999); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("unknown review error = %v, want ErrReviewNotFound", err)
	}
}

func TestGetReviewStats(t *testing.T) {
	f := newReviewFixture(t)

	ratings := []int{5, 5, 4, 2, 1}
	for i, r := range ratings {
		if _, err := f.service.CreateReview(f.app.ID, uint(i+1), CreateReviewInput{Rating: r}); err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}
	}

	stats, err := f.service.GetReviewStats(f.app.ID)
	if err != nil {
		t.Fatalf("GetReviewStats failed: %v", err)
	}
	if stats.TotalCount != 5 {
		t.Errorf("total = %d, want 5", stats.TotalCount)
	}
	// (5+5+4+2+1)/5 = 3.4
	if stats.AverageRating != 3.4 {
		t.Errorf("average = %v, want 3.4", stats.AverageRating)
	}
	wantHist := map[int]int64{1: 1, 2: 1, 3: 0, 4: 1, 5: 2}
	for rating, want := range wantHist {
		if stats.Histogram[rating] != want {
			t.Errorf("histogram[%d] = %d, want %d", rating, stats.Histogram[rating], want)
		}
	}
}
