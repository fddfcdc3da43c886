package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/service"
)

// UploadHandler handles avatar and server icon uploads.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// UploadAvatar handles POST /api/v1/users/@me/avatar.
func (h *UploadHandler) UploadAvatar(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file form field is required")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
	}
	defer src.Close()

	userID := auth.GetUserID(c)

	result, serr := h.service.UploadAvatar(c.Request().Context(), userID, file.Size, file.Header.Get("Content-Type"), src)
	if serr != nil {
		return mapServiceError(c, serr)
	}

	return c.JSON(http.StatusOK, result)
}

// UploadServerIcon handles POST /api/v1/servers/:id/icon.
func (h *UploadHandler) UploadServerIcon(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file form field is required")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
	}
	defer src.Close()

	userID := auth.GetUserID(c)

	result, serr := h.service.UploadServerIcon(c.Request().Context(), serverID, userID, file.Size, file.Header.Get("Content-Type"), src)
	if serr != nil {
		return mapServiceError(c, serr)
	}

	return c.JSON(http.StatusOK, result)
}
