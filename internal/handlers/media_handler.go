package handlers

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
)

type MediaHandler struct {
	s3 *storage.S3Storage
}

func NewMediaHandler(s3 *storage.S3Storage) *MediaHandler {
	return &MediaHandler{s3: s3}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

// GetListingImage streams icons and screenshots from object storage with ETag
// caching. Keys arrive as the wildcard path after the prefix segment.
// GET /api/media/icons/* and /api/media/screenshots/*
func (h *MediaHandler) GetListingImage(prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h.s3 == nil {
			return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
		}

		keyParam := strings.TrimSpace(c.Params("*"))
		key, err := storage.SafeJoinObjectPath(prefix, keyParam)
		if err != nil {
			return httpx.NotFound(c, "not_found", "Not found")
		}

		obj, st, err := h.s3.GetObject(c.Context(), key)
		if err != nil {
			// Hide details.
			var resp minio.ErrorResponse
			if errors.As(err, &resp) {
				if resp.StatusCode == 404 || resp.Code == "NoSuchKey" || resp.Code == "NoSuchObject" {
					return httpx.NotFound(c, "not_found", "Not found")
				}
			}
			return httpx.Internal(c, "media_fetch_failed")
		}

		etag := st.ETag
		if etag != "" {
			c.Set("ETag", "\""+etag+"\"")
			if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
				_ = obj.Close()
				return c.SendStatus(fiber.StatusNotModified)
			}
		}

		// Listing images are content-addressed, so cache hard.
		c.Set("Cache-Control", "public, max-age=31536000, immutable")
		if st.ContentType != "" {
			c.Type(st.ContentType)
		} else {
			c.Type("image/jpeg")
		}
		if st.Size > 0 {
			c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
		}

		// Stream object while capturing any mid-stream errors.
		// (Fiber versions vary; use underlying fasthttp stream writer.)
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer func() {
				_ = obj.Close()
			}()
			_, _ = io.Copy(w, obj)
			_ = w.Flush()
		})
		return nil
	}
}
