package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
)

// Sheet titles and the ranges read back from them.
const (
	EntriesSheet  = "Gas Log"
	VehiclesSheet = "Vehicles"

	entriesRange  = EntriesSheet + "!A2:N"
	vehiclesRange = VehiclesSheet + "!A2:G"
)

// EntryHeaders is row 1 of the Gas Log sheet, columns A-N.
var EntryHeaders = []string{
	"id", "vehicle_id", "gas_station", "gas_station_city", "fuel_type",
	"mpg_before", "mileage", "dte_before", "price_per_gallon", "gallons",
	"total_cost", "dte_after", "date_gas_added", "added_from_empty",
}

// VehicleHeaders is row 1 of the Vehicles sheet, columns A-G.
var VehicleHeaders = []string{
	"id", "name", "make", "model", "year", "expected_mpg", "is_default",
}

// EntryRow marshals e into the Gas Log column order.
func EntryRow(e core.FuelEntry) []any {
	return []any{
		e.ID,
		e.VehicleID,
		e.GasStation,
		e.GasStationCity,
		string(e.FuelType),
		e.MPGBefore,
		e.Mileage,
		e.DTEBefore,
		e.PricePerGallon,
		e.Gallons,
		e.TotalCost,
		e.DTEAfter,
		e.DateGasAdded.UTC().Format(time.RFC3339),
		strconv.FormatBool(e.AddedFromEmpty),
	}
}

// ParseEntryRow unmarshals one Gas Log row. Missing cells read as empty and
// unparseable numbers as 0.
func ParseEntryRow(row []any) core.FuelEntry {
	e := core.FuelEntry{
		ID:             cell(row, 0),
		VehicleID:      cell(row, 1),
		GasStation:     cell(row, 2),
		GasStationCity: cell(row, 3),
		FuelType:       core.FuelType(cell(row, 4)),
		MPGBefore:      number(cell(row, 5)),
		Mileage:        number(cell(row, 6)),
		DTEBefore:      number(cell(row, 7)),
		PricePerGallon: number(cell(row, 8)),
		Gallons:        number(cell(row, 9)),
		TotalCost:      number(cell(row, 10)),
		DTEAfter:       number(cell(row, 11)),
		DateGasAdded:   timestamp(cell(row, 12)),
		AddedFromEmpty: cell(row, 13) == "true",
	}
	if e.FuelType == "" {
		e.FuelType = core.FuelRegular87
	}
	return e
}

// VehicleRow marshals v into the Vehicles column order.
func VehicleRow(v core.Vehicle) []any {
	year := ""
	if v.Year > 0 {
		year = strconv.Itoa(v.Year)
	}
	return []any{
		v.ID,
		v.Name,
		v.Make,
		v.Model,
		year,
		v.ExpectedMPG,
		strconv.FormatBool(v.IsDefault),
	}
}

// ParseVehicleRow unmarshals one Vehicles row.
func ParseVehicleRow(row []any) core.Vehicle {
	year, _ := strconv.Atoi(cell(row, 4))
	return core.Vehicle{
		ID:          cell(row, 0),
		Name:        cell(row, 1),
		Make:        cell(row, 2),
		Model:       cell(row, 3),
		Year:        year,
		ExpectedMPG: number(cell(row, 5)),
		IsDefault:   cell(row, 6) == "true",
	}
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func timestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := core.ParseTimestamp(s)
	return t
}

func blank(row []any) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}

func headerRow(headers []string) [][]any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return [][]any{row}
}
