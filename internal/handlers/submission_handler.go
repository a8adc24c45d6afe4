package handlers

import (
	"strconv"

	"github.com/appgrid/marketplace-backend/internal/cache"
	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	catalogCache      *cache.CatalogCache
}

func NewSubmissionHandler(submissionService *service.SubmissionService, catalogCache *cache.CatalogCache) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService, catalogCache: catalogCache}
}

// POST /api/developer/apps
func (h *SubmissionHandler) CreateApp(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}

	var input service.CreateAppInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "App name is required")
	}

	app, err := h.submissionService.CreateApp(userID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// GET /api/developer/apps
func (h *SubmissionHandler) ListDeveloperApps(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	apps, err := h.submissionService.ListDeveloperApps(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(apps)
}

// PUT /api/developer/apps/:app_id
func (h *SubmissionHandler) UpdateAppDetails(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var input service.UpdateAppInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	app, err := h.submissionService.UpdateAppDetails(userID, appID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

// POST /api/developer/apps/:app_id/versions
func (h *SubmissionHandler) SubmitVersion(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var input service.SubmitVersionInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	sub, err := h.submissionService.SubmitVersion(userID, appID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// POST /api/developer/apps/:app_id/publish
func (h *SubmissionHandler) PublishApp(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	app, err := h.submissionService.PublishApp(userID, appID)
	if err != nil {
		return serviceError(c, err)
	}
	_ = h.catalogCache.InvalidateApp(app.ID, app.Slug)
	_ = h.catalogCache.InvalidateLists()
	return c.JSON(app)
}

// DELETE /api/developer/apps/:app_id
func (h *SubmissionHandler) DeleteApp(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	if err := h.submissionService.DeleteApp(userID, appID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "App deleted"})
}

// GET /api/developer/apps/:app_id/submissions
func (h *SubmissionHandler) ListSubmissionsByApp(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	subs, err := h.submissionService.ListSubmissionsByApp(userID, appID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subs)
}

// GET /api/developer/submissions
func (h *SubmissionHandler) ListMySubmissions(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	subs, err := h.submissionService.ListSubmissionsByDeveloper(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subs)
}

func paramSubmissionID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// POST /api/developer/submissions/:id/withdraw
func (h *SubmissionHandler) WithdrawSubmission(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	subID, err := paramSubmissionID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_submission_id", "Invalid submission ID")
	}

	sub, err := h.submissionService.WithdrawSubmission(userID, subID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}

// GET /api/admin/submissions
func (h *SubmissionHandler) ReviewQueue(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	subs, err := h.submissionService.ReviewQueue(limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subs)
}

// POST /api/admin/submissions/:id/start
func (h *SubmissionHandler) StartReview(c *fiber.Ctx) error {
	subID, err := paramSubmissionID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_submission_id", "Invalid submission ID")
	}

	sub, err := h.submissionService.StartReview(subID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}

type reviewDecisionRequest struct {
	Note string `json:"note"`
}

// POST /api/admin/submissions/:id/approve
func (h *SubmissionHandler) ApproveSubmission(c *fiber.Ctx) error {
	subID, err := paramSubmissionID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_submission_id", "Invalid submission ID")
	}

	var req reviewDecisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return httpx.BadRequest(c, "invalid_body", "Invalid request body")
		}
	}

	sub, err := h.submissionService.ApproveSubmission(subID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}

// POST /api/admin/submissions/:id/reject
func (h *SubmissionHandler) RejectSubmission(c *fiber.Ctx) error {
	subID, err := paramSubmissionID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_submission_id", "Invalid submission ID")
	}

	var req reviewDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.Note == "" {
		return httpx.BadRequest(c, "missing_note", "A rejection note is required")
	}

	sub, err := h.submissionService.RejectSubmission(subID, req.Note)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}
