package handlers

import (
	"bytes"
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/appgrid/marketplace-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const maxPackageBytes = 256 * 1024 * 1024

type UploadHandler struct {
	submissionService *service.SubmissionService
	catalogService    *service.CatalogService
	s3                *storage.S3Storage
}

func NewUploadHandler(submissionService *service.SubmissionService, catalogService *service.CatalogService, s3 *storage.S3Storage) *UploadHandler {
	return &UploadHandler{submissionService: submissionService, catalogService: catalogService, s3: s3}
}

func (h *UploadHandler) storageReady(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}
	return nil
}

func imageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "File too large")
	case errors.Is(err, storage.ErrUnsupported):
		return httpx.BadRequest(c, "unsupported_type", "Only JPEG, PNG, and WebP are accepted")
	case errors.Is(err, storage.ErrInvalidImage):
		return httpx.BadRequest(c, "invalid_image", "File is not a valid image")
	}
	return httpx.Internal(c, "image_processing_failed")
}

// UploadIcon accepts a multipart "file" field, normalizes the image, and
// stores it under the app's icon prefix.
// POST /api/developer/apps/:app_id/icon
func (h *UploadHandler) UploadIcon(c *fiber.Ctx) error {
	if err := h.storageReady(c); err != nil {
		return err
	}
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "A file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_read_failed")
	}
	defer file.Close()

	data, contentType, size, err := storage.ProcessListingImage(file, storage.DefaultIconOptions())
	if err != nil {
		return imageError(c, err)
	}

	app, err := h.submissionService.GetOwnedApp(userID, appID)
	if err != nil {
		return serviceError(c, err)
	}

	key := storage.IconKey(app.Slug)
	if _, err := h.s3.PutObject(c.Context(), key, bytes.NewReader(data), size, contentType); err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	if _, err := h.submissionService.SetAppIcon(userID, appID, key); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"icon_url": key, "size": size})
}

// POST /api/developer/apps/:app_id/screenshots
func (h *UploadHandler) UploadScreenshot(c *fiber.Ctx) error {
	if err := h.storageReady(c); err != nil {
		return err
	}
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "A file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_read_failed")
	}
	defer file.Close()

	data, contentType, size, err := storage.ProcessListingImage(file, storage.DefaultScreenshotOptions())
	if err != nil {
		return imageError(c, err)
	}

	app, err := h.submissionService.GetOwnedApp(userID, appID)
	if err != nil {
		return serviceError(c, err)
	}

	key := storage.ScreenshotKey(app.Slug)
	if _, err := h.s3.PutObject(c.Context(), key, bytes.NewReader(data), size, contentType); err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	if _, err := h.submissionService.AddAppScreenshot(userID, appID, key); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"screenshot_url": key, "size": size})
}

// UploadPackage stores a version package and returns the object key the
// developer then passes to the version submission.
// POST /api/developer/apps/:app_id/package?version=1.0.0
func (h *UploadHandler) UploadPackage(c *fiber.Ctx) error {
	if err := h.storageReady(c); err != nil {
		return err
	}
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}
	version := c.Query("version")
	if version == "" {
		return httpx.BadRequest(c, "missing_version", "version query parameter is required")
	}

	// Resolve ownership via the service before accepting the bytes.
	app, err := h.submissionService.GetOwnedApp(userID, appID)
	if err != nil {
		return serviceError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "A file field is required")
	}
	if fileHeader.Size > maxPackageBytes {
		return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "Package exceeds the size limit")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_read_failed")
	}
	defer file.Close()

	key := storage.PackageKey(app.Slug, version)
	stat, err := h.s3.PutObject(c.Context(), key, file, fileHeader.Size, "application/octet-stream")
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"package_url":  key,
		"package_size": stat.Size,
		"etag":         stat.ETag,
	})
}

// GetPackageURL presigns a short-lived download link for an installed app's
// package.
// GET /api/apps/:app_id/package-url
func (h *UploadHandler) GetPackageURL(c *fiber.Ctx) error {
	if err := h.storageReady(c); err != nil {
		return err
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	app, err := h.catalogService.GetApp(appID)
	if err != nil {
		return serviceError(c, err)
	}
	if app.PackageURL == "" {
		return httpx.NotFound(c, "package_not_found", "No package stored for this app")
	}

	url, err := h.s3.PresignDownload(c.Context(), app.PackageURL, 15*time.Minute)
	if err != nil {
		return httpx.Internal(c, "presign_failed")
	}
	return c.JSON(fiber.Map{"url": url, "expires_in": 900})
}
