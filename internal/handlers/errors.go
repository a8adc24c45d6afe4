package handlers

import (
	"errors"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps the service sentinels onto the HTTP envelope so every
// handler reports the same status for the same failure.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAppNotFound):
		return httpx.NotFound(c, "app_not_found", "App not found")
	case errors.Is(err, service.ErrDeveloperNotFound):
		return httpx.NotFound(c, "developer_not_found", "Developer not found")
	case errors.Is(err, service.ErrReviewNotFound):
		return httpx.NotFound(c, "review_not_found", "Review not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return httpx.NotFound(c, "submission_not_found", "Submission not found")
	case errors.Is(err, service.ErrNotInstalled):
		return httpx.NotFound(c, "not_installed", "App is not installed")
	case errors.Is(err, service.ErrNoVersionFound):
		return httpx.NotFound(c, "version_not_found", "No version available")

	case errors.Is(err, service.ErrAlreadyInstalled):
		return httpx.Conflict(c, "already_installed", "App is already installed")
	case errors.Is(err, service.ErrNoUpdateAvailable):
		return httpx.Conflict(c, "no_update_available", "Installed version is already current")
	case errors.Is(err, service.ErrDuplicateSlug):
		return httpx.Conflict(c, "duplicate_slug", "Slug is already taken")
	case errors.Is(err, service.ErrDuplicateVersion):
		return httpx.Conflict(c, "duplicate_version", "Version was already submitted")
	case errors.Is(err, service.ErrDuplicateReview):
		return httpx.Conflict(c, "duplicate_review", "You already reviewed this app")
	case errors.Is(err, service.ErrAlreadyRegistered):
		return httpx.Conflict(c, "already_registered", "Developer account already exists")
	case errors.Is(err, service.ErrAlreadyVerified):
		return httpx.Conflict(c, "already_verified", "Developer is already verified")
	case errors.Is(err, service.ErrInvalidState):
		return httpx.Conflict(c, "invalid_state", "Operation not valid in the current state")

	case errors.Is(err, service.ErrUnauthorized):
		return httpx.Forbidden(c, "forbidden", "You do not own this resource")
	case errors.Is(err, service.ErrQuotaExceeded):
		return httpx.Forbidden(c, "quota_exceeded", "Publish quota for your tier is exhausted")
	case errors.Is(err, service.ErrInReviewLocked):
		return httpx.Conflict(c, "in_review_locked", "App is locked while under review")
	case errors.Is(err, service.ErrSystemAppProtected):
		return httpx.Forbidden(c, "system_app", "System apps cannot be uninstalled")
	case errors.Is(err, service.ErrNotApproved):
		return httpx.Conflict(c, "not_approved", "App has not been approved for publication")

	case errors.Is(err, service.ErrInvalidRating):
		return httpx.BadRequest(c, "invalid_rating", "Rating must be an integer from 1 to 5")
	case errors.Is(err, service.ErrInvalidVersion):
		return httpx.BadRequest(c, "invalid_version", "Version must be MAJOR.MINOR.PATCH")
	case errors.Is(err, service.ErrInvalidEmail):
		return httpx.BadRequest(c, "invalid_email", "Support email is not valid")
	case errors.Is(err, service.ErrInvalidSlug):
		return httpx.BadRequest(c, "invalid_slug", "Slug must be lowercase letters, digits, and hyphens")
	}
	return httpx.Internal(c, "internal_error")
}
