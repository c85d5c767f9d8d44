package service

import (
	"context"
	"fmt"
	"strings"

	"rutaflow/internal/domain"
	"rutaflow/internal/profit"
)

// ReceiptService renders a trip's profitability breakdown as plain text,
// for sharing or printing.
type ReceiptService struct {
	tripService *TripService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(tripService *TripService) *ReceiptService {
	return &ReceiptService{tripService: tripService}
}

// Receipt returns the text breakdown of one of a driver's trips.
func (s *ReceiptService) Receipt(ctx context.Context, driverID, tripID string) (string, error) {
	view, err := s.tripService.Get(ctx, driverID, tripID)
	if err != nil {
		return "", err
	}

	settings, err := s.tripService.settingsService.Get(ctx, driverID)
	if err != nil {
		return "", err
	}

	return FormatReceipt(view.Trip, view.Breakdown, settings), nil
}

var verdictLabels = map[profit.Verdict]string{
	profit.VerdictGood:       "RENTABLE",
	profit.VerdictAcceptable: "ACEPTABLE",
	profit.VerdictPoor:       "NO RENTABLE",
}

// FormatReceipt formats a breakdown as a fixed-width text block.
func FormatReceipt(trip *domain.Trip, b profit.Breakdown, settings domain.Settings) string {
	var sb strings.Builder

	line := func(label string, amount float64, sign string) {
		fmt.Fprintf(&sb, "%-28s %s$%9.2f\n", label, sign, amount)
	}

	sb.WriteString("=====================================\n")
	sb.WriteString("        DESGLOSE DEL VIAJE\n")
	sb.WriteString("=====================================\n")
	fmt.Fprintf(&sb, "Viaje:      %s\n", trip.ID)
	fmt.Fprintf(&sb, "Fecha:      %s\n", trip.Date)
	fmt.Fprintf(&sb, "Plataforma: %s\n", strings.ToUpper(string(trip.Platform)))
	fmt.Fprintf(&sb, "Medición:   %s\n", trip.Source)
	fmt.Fprintf(&sb, "Distancia:  %s km\n", formatFloat(b.DistanceKm))
	fmt.Fprintf(&sb, "Duración:   %s min\n", formatFloat(b.DurationMin))
	sb.WriteString("-------------------------------------\n")
	line("Tarifa", b.Fare, " ")
	line(fmt.Sprintf("Comisión plataforma (%s%%)", formatPercent(settings.CommissionPercent)), b.PlatformFee, "-")
	line("Gasolina", b.FuelCost, "-")
	if b.FixedCost > 0 {
		line("Costos fijos", b.FixedCost, "-")
	}
	sb.WriteString("-------------------------------------\n")
	line("NETO", b.NetEarning, " ")
	line("Neto por hora", b.NetPerHour, " ")
	line("Neto por km", b.NetPerKm, " ")
	fmt.Fprintf(&sb, "%-28s  %9s%%\n", "Margen", formatFloat(b.GrossMarginPercent))
	sb.WriteString("=====================================\n")
	fmt.Fprintf(&sb, "  %s (meta $%s/hr)\n", verdictLabels[b.Verdict], formatFloat(settings.TargetHourlyRate))
	sb.WriteString("=====================================\n")

	return sb.String()
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatPercent(f float64) string {
	return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.1f", f), "0"), ".")
}
