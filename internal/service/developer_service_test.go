package service

import (
	"errors"
	"testing"

	"github.com/appgrid/marketplace-backend/internal/models"
)

func newDeveloperService() (*DeveloperService, *MockDeveloperRepository) {
	repo := NewMockDeveloperRepository()
	return NewDeveloperService(repo), repo
}

func TestRegisterDeveloper(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		tier    models.DeveloperTier
		wantErr error
	}{
		{"Valid free", "dev@acme.test", models.TierFree, nil},
		{"Valid pro", "dev@acme.test", models.TierPro, nil},
		{"Email normalized", "  Dev@ACME.test ", "", nil},
		{"Bad email", "not-an-email", models.TierFree, ErrInvalidEmail},
		{"Empty email", "", models.TierFree, ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newDeveloperService()
			dev, err := svc.RegisterDeveloper(1, RegisterDeveloperInput{
				DisplayName:  "Acme",
				SupportEmail: tt.email,
				Tier:         tt.tier,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RegisterDeveloper error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if dev.Status != models.DeveloperPending {
				t.Errorf("new developer status = %q, want PENDING", dev.Status)
			}
			if dev.Verified {
				t.Error("new developer must start unverified")
			}
			wantTier := tt.tier
			if wantTier == "" {
				wantTier = models.TierFree
			}
			if dev.Tier != wantTier {
				t.Errorf("tier = %q, want %q", dev.Tier, wantTier)
			}
			if dev.SupportEmail != "dev@acme.test" {
				t.Errorf("email = %q, want normalized dev@acme.test", dev.SupportEmail)
			}
		})
	}
}

// One developer record per user.
func TestRegisterDeveloperDuplicate(t *testing.T) {
	svc, _ := newDeveloperService()

	if _, err := svc.RegisterDeveloper(1, RegisterDeveloperInput{SupportEmail: "dev@acme.test"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.RegisterDeveloper(1, RegisterDeveloperInput{SupportEmail: "other@acme.test"}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second register error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestVerifyDeveloper(t *testing.T) {
	svc, _ := newDeveloperService()

	dev, _ := svc.RegisterDeveloper(1, RegisterDeveloperInput{SupportEmail: "dev@acme.test"})

	verified, err := svc.VerifyDeveloper(dev.ID)
	if err != nil {
		t.Fatalf("VerifyDeveloper failed: %v", err)
	}
	if !verified.Verified || verified.VerifiedAt == nil {
		t.Error("verification not recorded")
	}
	if verified.Status != models.DeveloperActive {
		t.Errorf("status = %q, want ACTIVE", verified.Status)
	}

	if _, err := svc.VerifyDeveloper(dev.ID); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("double verify error = %v, want ErrAlreadyVerified", err)
	}
	if _, err := svc.VerifyDeveloper(999); !errors.Is(err, ErrDeveloperNotFound) {
		t.Errorf("unknown developer error = %v, want ErrDeveloperNotFound", err)
	}
}

func TestCanPublishApp(t *testing.T) {
	tests := []struct {
		name      string
		tier      models.DeveloperTier
		published int
		active    bool
		want      bool
	}{
		{"Free under quota", models.TierFree, 2, true, true},
		{"Free at quota", models.TierFree, 3, true, false},
		{"Pro under quota", models.TierPro, 24, true, true},
		{"Pro at quota", models.TierPro, 25, true, false},
		{"Enterprise unbounded", models.TierEnterprise, 1000, true, true},
		{"Inactive account", models.TierEnterprise, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newDeveloperService()
			dev := &models.Developer{UserID: 1, Tier: tt.tier, PublishedApps: tt.published, Status: models.DeveloperPending}
			if tt.active {
				dev.Status = models.DeveloperActive
			}
			repo.Create(dev)

			got, err := svc.CanPublishApp(dev.ID)
			if err != nil {
				t.Fatalf("CanPublishApp failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanPublishApp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetupPaymentMethod(t *testing.T) {
	svc, _ := newDeveloperService()
	dev, _ := svc.RegisterDeveloper(1, RegisterDeveloperInput{SupportEmail: "dev@acme.test"})

	got, err := svc.SetupPaymentMethod(dev.ID, "acct_123")
	if err != nil {
		t.Fatalf("SetupPaymentMethod failed: %v", err)
	}
	if !got.PaymentMethodSetup || got.PaymentAccountRef != "acct_123" {
		t.Error("payment setup not recorded")
	}

	// Idempotent: calling again with a new ref just replaces it.
	got, err = svc.SetupPaymentMethod(dev.ID, "acct_456")
	if err != nil || got.PaymentAccountRef != "acct_456" {
		t.Errorf("repeat setup: ref = %q err = %v", got.PaymentAccountRef, err)
	}
}

func TestSuspendDeveloper(t *testing.T) {
	svc, _ := newDeveloperService()
	dev, _ := svc.RegisterDeveloper(1, RegisterDeveloperInput{SupportEmail: "dev@acme.test"})
	svc.VerifyDeveloper(dev.ID)

	got, err := svc.SuspendDeveloper(dev.ID)
	if err != nil {
		t.Fatalf("SuspendDeveloper failed: %v", err)
	}
	if got.Status != models.DeveloperSuspended {
		t.Errorf("status = %q, want SUSPENDED", got.Status)
	}

	// A suspended account cannot publish regardless of quota headroom.
	if can, _ := svc.CanPublishApp(dev.ID); can {
		t.Error("suspended developer must not be able to publish")
	}
}

func TestPublishLimits(t *testing.T) {
	if got := models.TierFree.PublishLimit(); got != 3 {
		t.Errorf("FREE limit = %d, want 3", got)
	}
	if got := models.TierPro.PublishLimit(); got != 25 {
		t.Errorf("PRO limit = %d, want 25", got)
	}
	if got := models.TierEnterprise.PublishLimit(); got >= 0 {
		t.Errorf("ENTERPRISE limit = %d, want unbounded", got)
	}
}
