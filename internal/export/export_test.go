package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/xuri/excelize/v2"
)

func entries() []core.FuelEntry {
	return []core.FuelEntry{
		{
			ID: "entry_1", VehicleID: "v1", GasStation: "Shell", GasStationCity: "Austin",
			FuelType: core.FuelPremium91, MPGBefore: 31.5, Mileage: 1000, DTEBefore: 20,
			PricePerGallon: 3.5, Gallons: 10, TotalCost: 35, DTEAfter: 400,
			DateGasAdded: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), AddedFromEmpty: true,
		},
		{
			ID: "entry_2", VehicleID: "v1", GasStation: "BP", GasStationCity: "Waco",
			FuelType: core.FuelDiesel, Mileage: 1300, DTEBefore: 80,
			PricePerGallon: 3.25, Gallons: 12, TotalCost: 39,
			DateGasAdded: time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" pdf ", FormatPDF, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCSV_ReimportsExactly(t *testing.T) {
	withComma := entries()[:1]
	withComma[0].GasStation = "Shell, Inc"
	withComma[0].GasStationCity = "Austin, TX"

	tests := []struct {
		name    string
		entries []core.FuelEntry
	}{
		{"plain values", entries()},
		{"comma in station", withComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := CSV(&buf, tt.entries); err != nil {
				t.Fatalf("CSV() error = %v", err)
			}

			parsed, err := core.ParseCSV(buf.String())
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if parsed.Delimiter != '\t' {
				t.Errorf("Delimiter = %q, want tab", parsed.Delimiter)
			}
			mapping := core.BuildFieldMapping(parsed.Headers, nil)
			if len(mapping.Unmapped()) != 0 {
				t.Fatalf("Unmapped = %v, want none", mapping.Unmapped())
			}
			if len(parsed.Rows) != len(tt.entries) {
				t.Fatalf("rows = %d, want %d", len(parsed.Rows), len(tt.entries))
			}

			for i, want := range tt.entries {
				got, err := core.ConvertRow(parsed.Rows[i], i, mapping)
				if err != nil {
					t.Fatalf("ConvertRow(%d) error = %v", i, err)
				}
				if !got.DateGasAdded.Equal(want.DateGasAdded) {
					t.Errorf("row %d date = %v, want %v", i, got.DateGasAdded, want.DateGasAdded)
				}
				got.DateGasAdded, want.DateGasAdded = time.Time{}, time.Time{}
				want.ID, want.VehicleID = "", ""
				if got != want {
					t.Errorf("row %d = %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestCSV_FlattensTabsAndNewlines(t *testing.T) {
	e := entries()[:1]
	e[0].GasStation = "Shell\tNorth\nLot"

	var buf bytes.Buffer
	if err := CSV(&buf, e); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	parsed, err := core.ParseCSV(buf.String())
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(parsed.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(parsed.Rows))
	}
	got, err := core.ConvertRow(parsed.Rows[0], 0, core.BuildFieldMapping(parsed.Headers, nil))
	if err != nil {
		t.Fatalf("ConvertRow() error = %v", err)
	}
	if got.GasStation != "Shell North Lot" {
		t.Errorf("GasStation = %q, want %q", got.GasStation, "Shell North Lot")
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatXLSX, Report{
		GeneratedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Entries:     entries(),
		Vehicles:    []core.Vehicle{{ID: "v1", Name: "Civic"}},
	})
	if err != nil {
		t.Fatalf("Write(xlsx) error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != entriesSheet || sheets[1] != summarySheet {
		t.Errorf("sheets = %v, want [Entries Summary]", sheets)
	}
	if v, _ := f.GetCellValue(entriesSheet, "C2"); v != "Shell" {
		t.Errorf("C2 = %q, want Shell", v)
	}
	if v, _ := f.GetCellValue(entriesSheet, "B2"); v != "Civic" {
		t.Errorf("B2 = %q, want vehicle name", v)
	}
	if v, _ := f.GetCellValue(summarySheet, "B4"); v != "74" {
		t.Errorf("Total Spending = %q, want 74", v)
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatPDF, Report{Title: "Fuel Log", Entries: entries()}); err != nil {
		t.Fatalf("Write(pdf) error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Errorf("output (%d bytes) does not start with a PDF header", buf.Len())
	}
}

func TestFormatMeta(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := FormatXLSX.FileName(now); got != "gas-log-2025-03-10.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
	if got := FormatPDF.ContentType(); got != "application/pdf" {
		t.Errorf("ContentType() = %q", got)
	}
}
