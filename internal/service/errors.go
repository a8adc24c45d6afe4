package service

import "errors"

// Not-found: the referenced record is absent. Terminal, never retried.
var (
	ErrAppNotFound        = errors.New("app not found")
	ErrDeveloperNotFound  = errors.New("developer not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotInstalled       = errors.New("app is not installed")
	ErrNoVersionFound     = errors.New("no version found for app")
)

// Conflict: the write collides with existing state. Surfaced with enough
// detail for the caller to decide whether to treat it as success.
var (
	ErrAlreadyInstalled    = errors.New("app is already installed")
	ErrNoUpdateAvailable   = errors.New("no update available")
	ErrDuplicateSlug       = errors.New("slug is already taken")
	ErrDuplicateVersion    = errors.New("version already exists for app")
	ErrDuplicateReview     = errors.New("user has already reviewed this app")
	ErrAlreadyRegistered   = errors.New("user is already registered as a developer")
	ErrAlreadyVerified     = errors.New("developer is already verified")
)

// Authorization: permission-style failures, distinct from not-found.
var (
	ErrUnauthorized       = errors.New("not authorized")
	ErrQuotaExceeded      = errors.New("published app quota exceeded for tier")
	ErrInReviewLocked     = errors.New("app is locked while in review")
	ErrSystemAppProtected = errors.New("system apps cannot be uninstalled")
	ErrNotApproved        = errors.New("app has not been approved")
	ErrInvalidState       = errors.New("operation not valid in current state")
)

// Validation: the input itself is malformed.
var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrInvalidVersion = errors.New("version must be MAJOR.MINOR.PATCH")
	ErrInvalidEmail   = errors.New("invalid support email")
	ErrInvalidSlug    = errors.New("invalid slug")
)
