package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/service"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// GetMe handles GET /api/v1/users/@me.
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := auth.GetUserID(c)

	user, err := h.service.GetByID(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

type updateMeRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarHash  *string `json:"avatar_hash,omitempty"`
}

// UpdateMe handles PATCH /api/v1/users/@me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID := auth.GetUserID(c)

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), userID, req.DisplayName, req.AvatarHash)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// GetUser handles GET /api/v1/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	user, err := h.service.GetByID(c.Request().Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":     user,
		"presence": h.service.GetPresence(c.Request().Context(), userID),
	})
}
