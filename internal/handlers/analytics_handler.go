package handlers

import (
	"errors"
	"time"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type eventRequest struct {
	Type string `json:"type"`
}

// RecordEvent ingests download/install/uninstall/launch/crash signals from
// platform clients.
// POST /api/apps/:app_id/events
func (h *AnalyticsHandler) RecordEvent(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.analyticsService.RecordEvent(appID, req.Type); err != nil {
		if errors.Is(err, service.ErrAppNotFound) {
			return serviceError(c, err)
		}
		return httpx.BadRequest(c, "invalid_event", err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Event recorded"})
}

type revenueRequest struct {
	Amount float64 `json:"amount"`
	Type   string  `json:"type"` // purchase | refund
}

// POST /api/apps/:app_id/revenue
func (h *AnalyticsHandler) RecordRevenue(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req revenueRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.analyticsService.RecordRevenue(appID, req.Amount, req.Type); err != nil {
		if errors.Is(err, service.ErrAppNotFound) {
			return serviceError(c, err)
		}
		return httpx.BadRequest(c, "invalid_revenue", err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Revenue recorded"})
}

type sessionRequest struct {
	DurationSecs float64 `json:"duration_secs"`
}

// POST /api/apps/:app_id/sessions
func (h *AnalyticsHandler) RecordSession(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.DurationSecs <= 0 {
		return httpx.BadRequest(c, "invalid_duration", "duration_secs must be positive")
	}

	if err := h.analyticsService.RecordSession(appID, time.Duration(req.DurationSecs*float64(time.Second))); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Session recorded"})
}

type activeUsersRequest struct {
	Count int64 `json:"count"`
}

// POST /api/apps/:app_id/active-users
func (h *AnalyticsHandler) ReportActiveUsers(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req activeUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.Count < 0 {
		return httpx.BadRequest(c, "invalid_count", "count must not be negative")
	}

	if err := h.analyticsService.ReportActiveUsers(appID, req.Count); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Active users recorded"})
}

// dateRange parses from/to query params, defaulting to the last 30 days.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

// GET /api/developer/apps/:app_id/analytics?from=2026-08-01&to=2026-08-28
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}
	from, to, err := dateRange(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_date", "Dates must be YYYY-MM-DD")
	}

	summary, err := h.analyticsService.GetAnalyticsSummary(appID, from, to)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

// GET /api/developer/apps/:app_id/analytics/daily
func (h *AnalyticsHandler) GetDailySeries(c *fiber.Ctx) error {
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}
	from, to, err := dateRange(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_date", "Dates must be YYYY-MM-DD")
	}

	rows, err := h.analyticsService.GetDailySeries(appID, from, to)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(rows)
}
