package export

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet = "Entries"
	summarySheet = "Summary"
)

var xlsxHeaders = []string{
	"Date", "Vehicle", "Station", "City", "Fuel Type", "Mileage",
	"Gallons", "Price/Gal", "Total Cost", "MPG Before", "DTE Before", "DTE After", "From Empty",
}

// XLSX writes a workbook with an Entries sheet and a Summary sheet.
func XLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(entriesSheet, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(entriesSheet, 1, 1, bold)
	}

	names := vehicleNames(r.Vehicles)
	for i, e := range r.Entries {
		row := i + 2
		values := []any{
			core.FormatDate(e.DateGasAdded),
			names[e.VehicleID],
			e.GasStation,
			e.GasStationCity,
			string(e.FuelType),
			e.Mileage,
			e.Gallons,
			e.PricePerGallon,
			e.TotalCost,
			e.MPGBefore,
			e.DTEBefore,
			e.DTEAfter,
			e.AddedFromEmpty,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(entriesSheet, cell, v)
		}
	}

	s := core.Summarize(r.Entries, r.Vehicles)
	summary := [][2]any{
		{"Fuel Log Summary", ""},
		{"Generated", core.FormatDateTime(r.GeneratedAt)},
		{"Fill-ups", s.FillUps},
		{"Total Spending", s.TotalSpending},
		{"Total Gallons", s.TotalGallons},
		{"Average MPG", s.AverageMPG},
		{"Average Price/Gal", s.AveragePricePerGal},
		{"Average Cost per Fill-up", s.AverageCostPerFillUp},
		{"Average Gallons", s.AverageGallons},
		{"Empty Tank Frequency (%)", s.EmptyTankFrequency},
	}
	if s.AverageEfficiency != nil {
		summary = append(summary, [2]any{"Average Efficiency (%)", *s.AverageEfficiency})
	}
	for i, kv := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}

	return f.Write(w)
}
