package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/service"
	"rutaflow/internal/stats"
)

// StatsHandler handles HTTP requests for statistics.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// RatesResponse carries the derived rates of the totals.
type RatesResponse struct {
	Hours      float64 `json:"hours"`
	NetPerHour float64 `json:"net_per_hour"`
	NetPerTrip float64 `json:"net_per_trip"`
}

// StatsResponse is the HTTP response for the statistics screen.
type StatsResponse struct {
	*stats.Report
	Rates RatesResponse `json:"rates"`
}

// Get handles GET /v1/stats?days=
func (h *StatsHandler) Get(c *gin.Context) {
	report, err := h.statsService.Report(c.Request.Context(), driverID(c), queryInt(c, "days"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatsResponse{
		Report: report,
		Rates: RatesResponse{
			Hours:      report.Totals.Hours(),
			NetPerHour: report.Totals.NetPerHour(),
			NetPerTrip: report.Totals.NetPerTrip(),
		},
	})
}

// Days handles GET /v1/stats/days?limit=
func (h *StatsHandler) Days(c *gin.Context) {
	sessions, err := h.statsService.Days(c.Request.Context(), driverID(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, sessionResponse(s))
	}
	respondJSON(c, http.StatusOK, response)
}
