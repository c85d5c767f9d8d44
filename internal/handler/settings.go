package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/service"
)

// SettingsHandler handles HTTP requests for driver settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context(), driverID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, settings)
}

// Update handles PUT /v1/settings. Fields absent from the body keep their
// current values.
func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := driverID(c)

	current, err := h.settingsService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.settingsService.Update(ctx, id, req.apply(current))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"settings": result.Settings,
		"notice":   result.Notice,
	})
}
