package service

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/validation"
	"gorm.io/gorm"
)

type DeveloperService struct {
	developerRepo repository.DeveloperRepositoryInterface
}

func NewDeveloperService(developerRepo repository.DeveloperRepositoryInterface) *DeveloperService {
	return &DeveloperService{developerRepo: developerRepo}
}

type RegisterDeveloperInput struct {
	DisplayName  string               `json:"display_name"`
	CompanyName  string               `json:"company_name"`
	SupportEmail string               `json:"support_email"`
	Website      string               `json:"website"`
	Bio          string               `json:"bio"`
	Tier         models.DeveloperTier `json:"tier"`
}

// RegisterDeveloper creates the one developer record a user may hold. New
// developers start unverified on PENDING status, FREE tier unless specified.
func (s *DeveloperService) RegisterDeveloper(userID uint, input RegisterDeveloperInput) (*models.Developer, error) {
	if _, err := s.developerRepo.FindByUserID(userID); err == nil {
		return nil, ErrAlreadyRegistered
	}

	email := validation.NormalizeEmail(input.SupportEmail)
	if !validation.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}

	tier := input.Tier
	switch tier {
	case models.TierFree, models.TierPro, models.TierEnterprise:
	default:
		tier = models.TierFree
	}

	dev := &models.Developer{
		UserID:       userID,
		DisplayName:  validation.TrimAndLimit(input.DisplayName, 100),
		CompanyName:  validation.TrimAndLimit(input.CompanyName, 100),
		SupportEmail: email,
		Website:      validation.TrimAndLimit(input.Website, 255),
		Bio:          input.Bio,
		Tier:         tier,
		Status:       models.DeveloperPending,
	}
	if err := s.developerRepo.Create(dev); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return dev, nil
}

// VerifyDeveloper flips the verification flag and activates the account.
func (s *DeveloperService) VerifyDeveloper(developerID uint) (*models.Developer, error) {
	dev, err := s.developerRepo.FindByID(developerID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	if dev.Verified {
		return nil, ErrAlreadyVerified
	}

	now := time.Now()
	dev.Verified = true
	dev.VerifiedAt = &now
	dev.Status = models.DeveloperActive
	if err := s.developerRepo.Update(dev); err != nil {
		return nil, err
	}
	return dev, nil
}

// CanPublishApp is a pure predicate: the account must be active and the
// published-app count must sit below the tier quota.
func (s *DeveloperService) CanPublishApp(developerID uint) (bool, error) {
	dev, err := s.developerRepo.FindByID(developerID)
	if err != nil {
		return false, ErrDeveloperNotFound
	}
	if dev.Status != models.DeveloperActive {
		return false, nil
	}
	limit := dev.Tier.PublishLimit()
	return limit < 0 || dev.PublishedApps < limit, nil
}

// SetupPaymentMethod idempotently attaches the external payment account
// reference.
func (s *DeveloperService) SetupPaymentMethod(developerID uint, paymentAccountRef string) (*models.Developer, error) {
	dev, err := s.developerRepo.FindByID(developerID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}

	dev.PaymentAccountRef = paymentAccountRef
	dev.PaymentMethodSetup = true
	if err := s.developerRepo.Update(dev); err != nil {
		return nil, err
	}
	return dev, nil
}

func (s *DeveloperService) SuspendDeveloper(developerID uint) (*models.Developer, error) {
	dev, err := s.developerRepo.FindByID(developerID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	dev.Status = models.DeveloperSuspended
	if err := s.developerRepo.Update(dev); err != nil {
		return nil, err
	}
	return dev, nil
}

func (s *DeveloperService) GetDeveloper(developerID uint) (*models.Developer, error) {
	dev, err := s.developerRepo.FindByID(developerID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	return dev, nil
}

func (s *DeveloperService) GetDeveloperByUser(userID uint) (*models.Developer, error) {
	dev, err := s.developerRepo.FindByUserID(userID)
	if err != nil {
		return nil, ErrDeveloperNotFound
	}
	return dev, nil
}
