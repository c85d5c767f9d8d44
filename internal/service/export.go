package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportService renders trip history as a spreadsheet.
type ExportService struct {
	tripService *TripService
	clock       func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(tripService *TripService) *ExportService {
	return &ExportService{tripService: tripService, clock: time.Now}
}

const exportSheet = "Viajes"

var exportHeaders = []string{
	"Fecha", "Plataforma", "Medición", "Km", "Min", "Tarifa", "Comisión",
	"Gasolina", "Costos fijos", "Neto", "Neto/hr", "Neto/km", "Margen %", "Resultado",
}

// XLSX writes the driver's trips in the trailing window to a workbook.
func (s *ExportService) XLSX(ctx context.Context, driverID string, days int) (*bytes.Buffer, error) {
	views, err := s.tripService.List(ctx, driverID, ListTripsRequest{Days: days})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0A500"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	if err := f.SetCellValue(exportSheet, "A1", "Historial de viajes"); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(exportSheet, "A2", fmt.Sprintf("Generado: %s", s.clock().Format("2006-01-02 15:04")))

	const headerRow = 4
	for col, label := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		_ = f.SetCellValue(exportSheet, cell, label)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}
	_ = f.SetColWidth(exportSheet, "A", "N", 14)

	var totalNet, totalKm float64
	for i, v := range views {
		row := headerRow + 1 + i
		b := v.Breakdown
		values := []any{
			v.Trip.Date,
			string(v.Trip.Platform),
			string(v.Trip.Source),
			round2(b.DistanceKm),
			round2(b.DurationMin),
			round2(b.Fare),
			round2(b.PlatformFee),
			round2(b.FuelCost),
			round2(b.FixedCost),
			round2(b.NetEarning),
			round2(b.NetPerHour),
			round2(b.NetPerKm),
			round2(b.GrossMarginPercent),
			verdictLabels[b.Verdict],
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
		first, _ := excelize.CoordinatesToCellName(6, row)
		last, _ := excelize.CoordinatesToCellName(12, row)
		_ = f.SetCellStyle(exportSheet, first, last, moneyStyle)

		totalNet += b.NetEarning
		totalKm += b.DistanceKm
	}

	summaryRow := headerRow + len(views) + 2
	summary := [][2]any{
		{"Viajes", len(views)},
		{"Km totales", round2(totalKm)},
		{"Neto total", round2(totalNet)},
	}
	for i, kv := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		_ = f.SetCellValue(exportSheet, keyCell, kv[0])
		_ = f.SetCellValue(exportSheet, valueCell, kv[1])
	}

	return f.WriteToBuffer()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
