package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestDeveloper creates a developer record with sensible defaults.
func (h *TestHelper) CreateTestDeveloper(id, userID uint, tier models.DeveloperTier) *models.Developer {
	if id == 0 {
		id = 1
	}
	if userID == 0 {
		userID = 100
	}
	if tier == "" {
		tier = models.TierFree
	}

	return &models.Developer{
		ID:           id,
		UserID:       userID,
		DisplayName:  "Test Developer",
		CompanyName:  "Test Co",
		SupportEmail: "dev@example.com",
		Tier:         tier,
		Status:       models.DeveloperActive,
		Verified:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// CreateTestApp creates a published catalog entry with sensible defaults.
func (h *TestHelper) CreateTestApp(id, developerID uint, slug string) *models.App {
	if id == 0 {
		id = 1
	}
	if developerID == 0 {
		developerID = 1
	}
	if slug == "" {
		slug = "test-app"
	}

	return &models.App{
		ID:             id,
		Slug:           slug,
		Name:           "Test App",
		DeveloperID:    developerID,
		Category:       "productivity",
		CurrentVersion: "1.0.0",
		Currency:       "USD",
		Status:         models.AppPublished,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}
