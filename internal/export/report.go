// Package export renders downloadable reports of the trip store.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// BuildTripsXLSX renders the trip listing plus a summary sheet.
func BuildTripsXLSX(trips []models.Trip, stats models.GeneralStats) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	tripsSheet := "trips"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(tripsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "EV Trip Report")
	_ = f.SetCellValue(summarySheet, "A3", "Total trips")
	_ = f.SetCellValue(summarySheet, "B3", stats.TotalTrips)
	_ = f.SetCellValue(summarySheet, "A4", "Total distance (km)")
	_ = f.SetCellValue(summarySheet, "B4", stats.TotalDistance)
	_ = f.SetCellValue(summarySheet, "A5", "Total consumption (kWh)")
	_ = f.SetCellValue(summarySheet, "B5", stats.TotalConsumption)
	_ = f.SetCellValue(summarySheet, "A6", "Avg efficiency (km/kWh)")
	_ = f.SetCellValue(summarySheet, "B6", stats.AvgEfficiency)
	_ = f.SetCellValue(summarySheet, "A7", "Avg speed (km/h)")
	_ = f.SetCellValue(summarySheet, "B7", stats.AvgSpeed)
	_ = f.SetCellValue(summarySheet, "A9", "Generated")
	_ = f.SetCellValue(summarySheet, "B9", time.Now().Format(time.RFC3339))

	headers := []string{"Start", "End", "Duration (s)", "Distance (km)", "Consumption (kWh)", "Efficiency (km/kWh)", "Avg speed (km/h)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(tripsSheet, cell, h)
	}
	for i, t := range trips {
		row := i + 2
		_ = f.SetCellValue(tripsSheet, fmt.Sprintf("A%d", row), t.StartTime)
		_ = f.SetCellValue(tripsSheet, fmt.Sprintf("B%d", row), t.EndTime)
		_ = f.SetCellValue(tripsSheet, fmt.Sprintf("C%d", row), t.Duration)
		_ = f.SetCellValue(tripsSheet, fmt.Sprintf("D%d", row), t.Distance)
		_ = f.SetCellValue(tripsSheet, fmt.Sprintf("E%d", row), t.Electricity)
		if t.Efficiency != nil {
			_ = f.SetCellValue(tripsSheet, fmt.Sprintf("F%d", row), *t.Efficiency)
		}
		if t.AvgSpeed != nil {
			_ = f.SetCellValue(tripsSheet, fmt.Sprintf("G%d", row), *t.AvgSpeed)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders a one-page summary with the most recent trips.
func BuildSummaryPDF(trips []models.Trip, stats models.GeneralStats) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "EV Trip Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total trips: %d", stats.TotalTrips))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total distance (km): %.1f", stats.TotalDistance))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total consumption (kWh): %.1f", stats.TotalConsumption))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Avg efficiency (km/kWh): %.2f", stats.AvgEfficiency))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Distance (km)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Consumption (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Efficiency", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	limit := len(trips)
	if limit > 40 {
		limit = 40
	}
	for _, t := range trips[:limit] {
		efficiency := "-"
		if t.Efficiency != nil {
			efficiency = fmt.Sprintf("%.2f", *t.Efficiency)
		}
		pdf.CellFormat(45, 6, t.StartTime, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", t.Distance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", t.Electricity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, efficiency, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
