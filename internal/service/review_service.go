package service

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/validation"
	"gorm.io/gorm"
)

type ReviewService struct {
	reviewRepo    repository.ReviewRepositoryInterface
	appRepo       repository.AppRepositoryInterface
	installRepo   repository.InstallRepositoryInterface
	developerRepo repository.DeveloperRepositoryInterface
}

func NewReviewService(
	reviewRepo repository.ReviewRepositoryInterface,
	appRepo repository.AppRepositoryInterface,
	installRepo repository.InstallRepositoryInterface,
	developerRepo repository.DeveloperRepositoryInterface,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		appRepo:       appRepo,
		installRepo:   installRepo,
		developerRepo: developerRepo,
	}
}

type CreateReviewInput struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateReview inserts the review and then recomputes the app's denormalized
// rating mean and count. The verified-purchase flag is a one-time snapshot of
// whether the user has the app installed; it is never revisited, even after
// an uninstall.
func (s *ReviewService) CreateReview(appID, userID uint, input CreateReviewInput) (*models.AppReview, error) {
	if !validation.ValidateRating(input.Rating) {
		return nil, ErrInvalidRating
	}

	app, err := s.appRepo.FindByID(appID)
	if err != nil {
		return nil, ErrAppNotFound
	}

	if _, err := s.reviewRepo.FindByAppAndUser(appID, userID); err == nil {
		return nil, ErrDuplicateReview
	}

	verified, err := s.installRepo.ExistsForUser(userID, appID)
	if err != nil {
		verified = false
	}

	review := &models.AppReview{
		AppID:              appID,
		UserID:             userID,
		Rating:             input.Rating,
		Title:              validation.TrimAndLimit(input.Title, 120),
		Content:            validation.TrimAndLimit(input.Content, 4000),
		VersionReviewed:    app.CurrentVersion,
		IsVerifiedPurchase: verified,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// Recomputation is the last step, after the write has landed.
	if _, _, err := s.reviewRepo.RecomputeAggregate(appID); err != nil {
		return nil, err
	}
	return review, nil
}

type UpdateReviewInput struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *ReviewService) UpdateReview(reviewID, actingUserID uint, input UpdateReviewInput) (*models.AppReview, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		return nil, ErrReviewNotFound
	}
	if review.UserID != actingUserID {
		return nil, ErrUnauthorized
	}
	if !validation.ValidateRating(input.Rating) {
		return nil, ErrInvalidRating
	}

	review.Rating = input.Rating
	if input.Title != "" {
		review.Title = validation.TrimAndLimit(input.Title, 120)
	}
	if input.Content != "" {
		review.Content = validation.TrimAndLimit(input.Content, 4000)
	}
	review.IsEdited = true
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	if _, _, err := s.reviewRepo.RecomputeAggregate(review.AppID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(reviewID, actingUserID uint) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		return ErrReviewNotFound
	}
	if review.UserID != actingUserID {
		return ErrUnauthorized
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}

	_, _, err = s.reviewRepo.RecomputeAggregate(review.AppID)
	return err
}

// AddDeveloperResponse stores the owning developer's reply. At most one
// response per review; a second call overwrites the first.
func (s *ReviewService) AddDeveloperResponse(reviewID, actingUserID uint, response string) (*models.AppReview, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	app, err := s.appRepo.FindByID(review.AppID)
	if err != nil {
		return nil, ErrAppNotFound
	}
	dev, err := s.developerRepo.FindByUserID(actingUserID)
	if err != nil || dev.ID != app.DeveloperID {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	review.DeveloperResponse = validation.TrimAndLimit(response, 4000)
	review.DeveloperResponseAt = &now
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// MarkHelpful is a pure counter bump with no aggregate side effect.
func (s *ReviewService) MarkHelpful(reviewID uint) error {
	if _, err := s.reviewRepo.FindByID(reviewID); err != nil {
		return ErrReviewNotFound
	}
	return s.reviewRepo.IncrementHelpful(reviewID)
}

func (s *ReviewService) ListReviews(appID uint, limit, offset int) ([]models.AppReview, int64, error) {
	return s.reviewRepo.ListByApp(appID, limit, offset)
}

// GetReviewStats recomputes count, rounded average, and the 1-5 histogram
// fresh from the stored reviews rather than from the denormalized app
// fields, so drift between the two is observable.
func (s *ReviewService) GetReviewStats(appID uint) (models.ReviewStats, error) {
	return s.reviewRepo.Stats(appID)
}
