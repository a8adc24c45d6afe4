package handlers

import (
	"strconv"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /api/apps/:app_id/reviews
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var input service.CreateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	review, err := h.reviewService.CreateReview(appID, userID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GET /api/apps/:app_id/reviews
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	reviews, total, err := h.reviewService.ListReviews(appID, limit, c.QueryInt("offset", 0))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews, "total": total})
}

// GET /api/apps/:app_id/reviews/stats
func (h *ReviewHandler) GetReviewStats(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	stats, err := h.reviewService.GetReviewStats(appID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func paramReviewID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// PUT /api/reviews/:id
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	reviewID, err := paramReviewID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_review_id", "Invalid review ID")
	}

	var input service.UpdateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	review, err := h.reviewService.UpdateReview(reviewID, userID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(review)
}

// DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	reviewID, err := paramReviewID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_review_id", "Invalid review ID")
	}

	if err := h.reviewService.DeleteReview(reviewID, userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}

// POST /api/reviews/:id/helpful
func (h *ReviewHandler) MarkHelpful(c *fiber.Ctx) error {
	reviewID, err := paramReviewID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_review_id", "Invalid review ID")
	}

	if err := h.reviewService.MarkHelpful(reviewID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Marked helpful"})
}

type developerResponseRequest struct {
	Response string `json:"response"`
}

// POST /api/reviews/:id/response
func (h *ReviewHandler) AddDeveloperResponse(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	reviewID, err := paramReviewID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_review_id", "Invalid review ID")
	}

	var req developerResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.Response == "" {
		return httpx.BadRequest(c, "missing_response", "Response text is required")
	}

	review, err := h.reviewService.AddDeveloperResponse(reviewID, userID, req.Response)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(review)
}
