package handlers

import (
	"strconv"

	"github.com/appgrid/marketplace-backend/internal/httpx"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type InstallHandler struct {
	installService *service.InstallService
}

func NewInstallHandler(installService *service.InstallService) *InstallHandler {
	return &InstallHandler{installService: installService}
}

func installScope(c *fiber.Ctx) (userID, orgID uint, err error) {
	userID, err = httpx.LocalUint(c, "userID")
	if err != nil {
		return 0, 0, err
	}
	orgID, err = httpx.LocalUint(c, "organizationID")
	if err != nil {
		return 0, 0, err
	}
	return userID, orgID, nil
}

func paramAppID(c *fiber.Ctx) (uint, error) {
	appID, err := strconv.ParseUint(c.Params("app_id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(appID), nil
}

// Install performs a synchronous install without progress streaming. Clients
// that want per-stage progress use the websocket endpoint instead.
// POST /api/installs/:app_id
func (h *InstallHandler) Install(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var opts service.InstallOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return httpx.BadRequest(c, "invalid_body", "Invalid request body")
		}
	}

	install, err := h.installService.Install(userID, orgID, appID, opts, nil)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(install.ToResponse())
}

// POST /api/installs/:app_id/update
func (h *InstallHandler) Update(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	install, err := h.installService.Update(userID, orgID, appID, nil)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(install.ToResponse())
}

// DELETE /api/installs/:app_id
func (h *InstallHandler) Uninstall(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	if err := h.installService.Uninstall(userID, orgID, appID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "App uninstalled"})
}

// GET /api/installs
func (h *InstallHandler) ListInstalled(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	installs, err := h.installService.ListInstalled(userID, orgID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(installs)
}

// POST /api/installs/:app_id/launch
func (h *InstallHandler) Launch(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	if err := h.installService.LaunchApp(userID, orgID, appID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Launch recorded"})
}

// POST /api/installs/:app_id/pin
func (h *InstallHandler) TogglePin(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	install, err := h.installService.TogglePin(userID, orgID, appID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(install.ToResponse())
}

type settingsRequest struct {
	Settings string `json:"settings"`
}

// PUT /api/installs/:app_id/settings
func (h *InstallHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	install, err := h.installService.UpdateAppSettings(userID, orgID, appID, req.Settings)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(install.ToResponse())
}

type sortOrderRequest struct {
	SortOrder int `json:"sort_order"`
}

// PUT /api/installs/:app_id/sort-order
func (h *InstallHandler) SetSortOrder(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	var req sortOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	install, err := h.installService.SetSortOrder(userID, orgID, appID, req.SortOrder)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(install.ToResponse())
}

// GET /api/installs/updates
func (h *InstallHandler) CheckForUpdates(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	updates, err := h.installService.CheckForUpdates(userID, orgID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"updates": updates, "count": len(updates)})
}

// GET /api/installs/:app_id/history
func (h *InstallHandler) UpdateHistory(c *fiber.Ctx) error {
	userID, orgID, err := installScope(c)
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity claims")
	}
	appID, err := paramAppID(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_app_id", "Invalid app ID")
	}

	records, err := h.installService.GetUpdateHistory(userID, orgID, appID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(records)
}

type progressFrame struct {
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

type installCommand struct {
	Action string `json:"action"` // install | update
	AppID  uint   `json:"app_id"`
}

// StreamInstall drives an install or update over a websocket, pushing one
// frame per progress stage. The connection serves one command and closes.
// GET /ws/install (after upgrade)
func (h *InstallHandler) StreamInstall(conn *websocket.Conn) {
	defer conn.Close()

	userID, ok := conn.Locals("userID").(uint)
	if !ok {
		_ = conn.WriteJSON(progressFrame{Error: "missing identity"})
		return
	}
	orgID, _ := conn.Locals("organizationID").(uint)

	var cmd installCommand
	if err := conn.ReadJSON(&cmd); err != nil {
		_ = conn.WriteJSON(progressFrame{Error: "invalid command"})
		return
	}

	sink := func(stage service.ProgressStage, progress int, message string) {
		_ = conn.WriteJSON(progressFrame{Stage: string(stage), Progress: progress, Message: message})
	}

	var err error
	switch cmd.Action {
	case "update":
		_, err = h.installService.Update(userID, orgID, cmd.AppID, sink)
	default:
		_, err = h.installService.Install(userID, orgID, cmd.AppID, service.InstallOptions{}, sink)
	}
	if err != nil {
		_ = conn.WriteJSON(progressFrame{Error: err.Error()})
	}
}
