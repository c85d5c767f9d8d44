// Package assistant builds the inputs sent to the hosted language model and
// interprets what comes back. Model output is treated as untrusted.
package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"rutaflow/internal/domain"
	"rutaflow/internal/stats"
)

// MinTripsForAnalysis is the trip count below which the chat screen warns
// that more data would improve the advice.
const MinTripsForAnalysis = 5

// NeedsMoreData reports whether the window holds too few trips.
func NeedsMoreData(count int) bool {
	return count < MinTripsForAnalysis
}

const noData = "sin datos"

// BuildContext renders the driver's aggregates as the one-line summary
// embedded in the system prompt. Output depends only on its inputs.
func BuildContext(r stats.Report, s domain.Settings, windowDays int) string {
	t := r.Totals

	best := make([]string, 0, len(r.BestHours))
	for _, h := range r.BestHours {
		best = append(best, fmt.Sprintf("%d:00", h.Hour))
	}
	bestHours := strings.Join(best, ", ")
	if bestHours == "" {
		bestHours = noData
	}

	plats := make([]string, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		plats = append(plats, fmt.Sprintf("%s:%s/viaje", p.Platform, money(p.NetPerTrip())))
	}
	platforms := strings.Join(plats, ", ")
	if platforms == "" {
		platforms = noData
	}

	return fmt.Sprintf(
		"Conductor Uber/Didi México. %d días: %d viajes, neto %s, %.0fkm, %s gas, %.1fhrs. $/hr=%s, meta=%s/hr. Mejores horas: %s. Plataformas: %s. Gas $%s/L, %skm/L.",
		windowDays, t.Count, money(t.Net), t.Km, money(t.Fuel), t.Hours(),
		money(t.NetPerHour()), money(s.TargetHourlyRate),
		bestHours, platforms,
		plain(s.FuelPricePerLiter), plain(s.KmPerLiter),
	)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
