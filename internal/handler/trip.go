package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService    *service.TripService
	receiptService *service.ReceiptService
	exportService  *service.ExportService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, receiptService *service.ReceiptService, exportService *service.ExportService) *TripHandler {
	return &TripHandler{
		tripService:    tripService,
		receiptService: receiptService,
		exportService:  exportService,
	}
}

// CreateTripResponse is the HTTP response for a saved trip.
type CreateTripResponse struct {
	Trip   TripResponse    `json:"trip"`
	Notice *service.Notice `json:"notice,omitempty"`
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.tripService.Create(c.Request.Context(), driverID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateTripResponse{
		Trip:   tripResponse(result.TripView),
		Notice: result.Notice,
	})
}

// Preview handles POST /v1/trips/preview
func (h *TripHandler) Preview(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.tripService.Preview(c.Request.Context(), driverID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(*view))
}

// GetAll handles GET /v1/trips?days=&date=&limit=
func (h *TripHandler) GetAll(c *gin.Context) {
	views, err := h.tripService.List(c.Request.Context(), driverID(c), service.ListTripsRequest{
		Days:  queryInt(c, "days"),
		Date:  c.Query("date"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(views))
	for _, v := range views {
		response = append(response, tripResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	view, err := h.tripService.Get(c.Request.Context(), driverID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(*view))
}

// Receipt handles GET /v1/trips/:id/receipt
func (h *TripHandler) Receipt(c *gin.Context) {
	text, err := h.receiptService.Receipt(c.Request.Context(), driverID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, text)
}

// Delete handles DELETE /v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	notice, err := h.tripService.Delete(c.Request.Context(), driverID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"notice": notice})
}

// Export handles GET /v1/trips/export?days=
func (h *TripHandler) Export(c *gin.Context) {
	buf, err := h.exportService.XLSX(c.Request.Context(), driverID(c), queryInt(c, "days"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "viajes.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// queryInt reads a non-negative integer query parameter; anything else is 0.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
