package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/geo"
	"rutaflow/internal/numeric"
	"rutaflow/internal/service"
)

// ShiftHandler handles HTTP requests for the work-day tracker.
type ShiftHandler struct {
	shiftService *service.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(shiftService *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// PositionRequest is one sample from the device: a fix, a precomputed
// distance delta, or a geolocation error code.
type PositionRequest struct {
	Lat       *float64       `json:"lat"`
	Lng       *float64       `json:"lng"`
	DeltaKm   *numeric.Float `json:"delta_km"`
	ErrorCode string         `json:"error"`
}

// PositionResponse is the HTTP response for a position sample.
type PositionResponse struct {
	ShiftResponse
	AddedKm float64 `json:"added_km"`
	Status  string  `json:"status"`
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	Platform string `json:"platform"`
}

// EndTripRequest is the HTTP request body for closing the active trip.
type EndTripRequest struct {
	Fare      numeric.Float `json:"fare"`
	Platform  string        `json:"platform"`
	PickupKm  numeric.Float `json:"pickup_km"`
	PickupMin numeric.Float `json:"pickup_min"`
	DestKm    numeric.Float `json:"dest_km"`
	DestMin   numeric.Float `json:"dest_min"`
}

// EndTripResponse is the HTTP response for closing the active trip.
type EndTripResponse struct {
	ShiftResponse
	Trip *TripResponse `json:"trip,omitempty"`
}

// EndShiftResponse is the HTTP response for ending the work day.
type EndShiftResponse struct {
	ShiftResponse
	Ended *SessionResponse `json:"ended,omitempty"`
}

// Get handles GET /v1/shift
func (h *ShiftHandler) Get(c *gin.Context) {
	view, err := h.shiftService.State(c.Request.Context(), driverID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shiftResponse(*view, false, nil))
}

// Start handles POST /v1/shift/start
func (h *ShiftHandler) Start(c *gin.Context) {
	result, err := h.shiftService.Start(c.Request.Context(), driverID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shiftResponse(result.ShiftView, result.Applied, result.Notice))
}

// Position handles POST /v1/shift/position
func (h *ShiftHandler) Position(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := service.PositionUpdate{ErrorCode: geo.ErrorCode(req.ErrorCode)}
	switch {
	case req.Lat != nil && req.Lng != nil:
		update.Fix = &geo.Fix{Lat: *req.Lat, Lng: *req.Lng}
	case req.DeltaKm != nil:
		delta := req.DeltaKm.Float64()
		update.DeltaKm = &delta
	case req.ErrorCode == "":
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng, delta_km or error is required"})
		return
	}

	result, err := h.shiftService.RecordPosition(c.Request.Context(), driverID(c), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PositionResponse{
		ShiftResponse: shiftResponse(result.ShiftView, result.Applied, result.Notice),
		AddedKm:       result.AddedKm,
		Status:        result.Status,
	})
}

// StartTrip handles POST /v1/shift/trip/start
func (h *ShiftHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	result, err := h.shiftService.StartTrip(c.Request.Context(), driverID(c), req.Platform)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shiftResponse(result.ShiftView, result.Applied, result.Notice))
}

// EndTrip handles POST /v1/shift/trip/end
func (h *ShiftHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.shiftService.EndTrip(c.Request.Context(), driverID(c), service.EndTripInput{
		Fare:      req.Fare.Float64(),
		Platform:  req.Platform,
		PickupKm:  req.PickupKm.Float64(),
		PickupMin: req.PickupMin.Float64(),
		DestKm:    req.DestKm.Float64(),
		DestMin:   req.DestMin.Float64(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := EndTripResponse{
		ShiftResponse: shiftResponse(result.ShiftView, result.Applied, result.Notice),
	}
	if result.Trip != nil {
		trip := tripResponse(*result.Trip)
		response.Trip = &trip
	}
	respondJSON(c, http.StatusOK, response)
}

// End handles POST /v1/shift/end
func (h *ShiftHandler) End(c *gin.Context) {
	result, err := h.shiftService.End(c.Request.Context(), driverID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EndShiftResponse{
		ShiftResponse: shiftResponse(result.ShiftView, result.Applied, result.Notice),
		Ended:         sessionResponse(result.Ended),
	})
}
