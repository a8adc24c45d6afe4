package handlers

import (
	"strconv"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type DeveloperHandler struct {
	developerService *service.DeveloperService
}

func NewDeveloperHandler(developerService *service.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{developerService: developerService}
}

// POST /api/developer/register
func (h *DeveloperHandler) Register(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}

	var input service.RegisterDeveloperInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if input.DisplayName == "" {
		return httpx.BadRequest(c, "missing_display_name", "Display name is required")
	}

	dev, err := h.developerService.RegisterDeveloper(userID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dev.ToResponse())
}

// GET /api/developer/me
func (h *DeveloperHandler) GetMe(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}

	dev, err := h.developerService.GetDeveloperByUser(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dev.ToResponse())
}

type paymentSetupRequest struct {
	PaymentAccountRef string `json:"payment_account_ref"`
}

// POST /api/developer/payment
func (h *DeveloperHandler) SetupPayment(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}

	var req paymentSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.PaymentAccountRef == "" {
		return httpx.BadRequest(c, "missing_account_ref", "Payment account reference is required")
	}

	dev, err := h.developerService.GetDeveloperByUser(userID)
	if err != nil {
		return serviceError(c, err)
	}
	dev, err = h.developerService.SetupPaymentMethod(dev.ID, req.PaymentAccountRef)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dev.ToResponse())
}

func paramDeveloperID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GET /api/developers/:id is the public profile view.
func (h *DeveloperHandler) GetDeveloper(c *fiber.Ctx) error {
	devID, err := paramDeveloperID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_developer_id", "Invalid developer ID")
	}

	dev, err := h.developerService.GetDeveloper(devID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dev.ToResponse())
}

// POST /api/admin/developers/:id/verify
func (h *DeveloperHandler) Verify(c *fiber.Ctx) error {
	devID, err := paramDeveloperID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_developer_id", "Invalid developer ID")
	}

	dev, err := h.developerService.VerifyDeveloper(devID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dev.ToResponse())
}

// POST /api/admin/developers/:id/suspend
func (h *DeveloperHandler) Suspend(c *fiber.Ctx) error {
	devID, err := paramDeveloperID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_developer_id", "Invalid developer ID")
	}

	dev, err := h.developerService.SuspendDeveloper(devID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dev.ToResponse())
}
