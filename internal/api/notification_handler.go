package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/service"
)

// NotificationHandler handles notification preference endpoints.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// GetSettings handles GET /api/v1/users/@me/notifications.
func (h *NotificationHandler) GetSettings(c echo.Context) error {
	userID := auth.GetUserID(c)

	settings, err := h.service.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	GlobalNotifications *string `json:"global_notifications,omitempty"`
	QuietHoursStart     *string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd       *string `json:"quiet_hours_end,omitempty"`
	DesktopEnabled      *bool   `json:"desktop_enabled,omitempty"`
	PushEnabled         *bool   `json:"push_enabled,omitempty"`
	SoundEnabled        *bool   `json:"sound_enabled,omitempty"`
}

// UpdateSettings handles PATCH /api/v1/users/@me/notifications.
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	userID := auth.GetUserID(c)

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	settings, err := h.service.UpdateSettings(c.Request().Context(), userID, service.SettingsUpdate{
		GlobalNotifications: req.GlobalNotifications,
		QuietHoursStart:     req.QuietHoursStart,
		QuietHoursEnd:       req.QuietHoursEnd,
		DesktopEnabled:      req.DesktopEnabled,
		PushEnabled:         req.PushEnabled,
		SoundEnabled:        req.SoundEnabled,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, settings)
}

type setLevelRequest struct {
	Level string `json:"level"`
}

// SetLevelOverride handles PUT /api/v1/users/@me/notifications/:target/:id.
func (h *NotificationHandler) SetLevelOverride(c echo.Context) error {
	target, targetID, err := overrideTarget(c)
	if err != nil {
		return mapServiceError(c, err)
	}

	var req setLevelRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	settings, serr := h.service.SetLevelOverride(c.Request().Context(), userID, target, targetID, req.Level)
	if serr != nil {
		return mapServiceError(c, serr)
	}

	return c.JSON(http.StatusOK, settings)
}

type muteRequest struct {
	Duration string `json:"duration"`
}

// Mute handles PUT /api/v1/users/@me/notifications/:target/:id/mute.
func (h *NotificationHandler) Mute(c echo.Context) error {
	target, targetID, err := overrideTarget(c)
	if err != nil {
		return mapServiceError(c, err)
	}

	var req muteRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	settings, serr := h.service.Mute(c.Request().Context(), userID, target, targetID, req.Duration)
	if serr != nil {
		return mapServiceError(c, serr)
	}

	return c.JSON(http.StatusOK, settings)
}

// ClearOverride handles DELETE /api/v1/users/@me/notifications/:target/:id.
func (h *NotificationHandler) ClearOverride(c echo.Context) error {
	target, targetID, err := overrideTarget(c)
	if err != nil {
		return mapServiceError(c, err)
	}

	userID := auth.GetUserID(c)

	settings, serr := h.service.ClearOverride(c.Request().Context(), userID, target, targetID)
	if serr != nil {
		return mapServiceError(c, serr)
	}

	return c.JSON(http.StatusOK, settings)
}

// overrideTarget reads the :target and :id route params. The target path
// segment is plural in the URL, singular in the service. It never writes
// to the response; callers map the returned error exactly once.
func overrideTarget(c echo.Context) (service.OverrideTarget, int64, error) {
	var target service.OverrideTarget
	switch c.Param("target") {
	case "servers":
		target = service.TargetServer
	case "channels":
		target = service.TargetChannel
	case "conversations":
		target = service.TargetConversation
	default:
		return "", 0, service.BadRequest("INVALID_TARGET", "target must be one of servers, channels, conversations")
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return "", 0, service.BadRequest("INVALID_ID", "invalid target id")
	}

	return target, targetID, nil
}
