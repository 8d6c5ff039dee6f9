package core

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"123", 123},
		{"0", 0},
		{"-45.5", -45.5},
		{".99", 0.99},
		{"99.", 99},
		{"  3.49  ", 3.49},
		{"$3.49", 3.49},
		{"€1.80", 1.80},
		{"£1.50", 1.50},
		{"12,345.6", 12345.6},
		{"10.5 gal", 10.5},
		{"1e3", 1000},
		{"", 0},
		{"abc", 0},
		{"N/A", 0},
		{"-", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNumber_RoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, 3.14159, 42.5, 1234.5678, 0.001, 99999.99} {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if got := ParseNumber(s); got != f {
			t.Errorf("ParseNumber(%q) = %v, want %v", s, got, f)
		}
	}
}

// ----------------------------------------------------------------------------
// ParseFuelType Tests
// ----------------------------------------------------------------------------

func TestParseFuelType(t *testing.T) {
	tests := []struct {
		input string
		want  FuelType
	}{
		{"Regular", FuelRegular87},
		{"87", FuelRegular87},
		{"Mid-Grade", FuelMidGrade89},
		{"89 octane", FuelMidGrade89},
		{"Premium", FuelPremium91},
		{"Premium 91", FuelPremium91},
		{"Premium 93", FuelPremium93},
		{"Super Unleaded", FuelPremium93},
		{"Diesel", FuelDiesel},
		{"E85 flex", FuelE85},
		{"e15", FuelE15},
		{"E10", FuelE10},
		{"", FuelRegular87},
		{"kerosene", FuelRegular87},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFuelType(tt.input); got != tt.want {
				t.Errorf("ParseFuelType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseTimestamp Tests
// ----------------------------------------------------------------------------

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"2025-02-01", time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local), true},
		{"2025-02-01 12:29", time.Date(2025, 2, 1, 12, 29, 0, 0, time.Local), true},
		{"2025-02-01 12:29:45", time.Date(2025, 2, 1, 12, 29, 45, 0, time.Local), true},
		{"2025-02-01T12:29", time.Date(2025, 2, 1, 12, 29, 0, 0, time.Local), true},
		{"02/01/2025", time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local), true},
		{"2/1/2025", time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local), true},
		{"Feb 1, 2025", time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local), true},
		{"2025-02-01T12:29:00Z", time.Date(2025, 2, 1, 12, 29, 0, 0, time.UTC), true},
		{"filled 2025-02-01 07:05 at Shell", time.Date(2025, 2, 1, 7, 5, 0, 0, time.Local), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"1", true},
		{"ran empty", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFlag(tt.input); got != tt.want {
				t.Errorf("ParseFlag(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Converter Tests
// ----------------------------------------------------------------------------

func convertOne(t *testing.T, conv Converter, text string) (FuelEntry, error) {
	t.Helper()
	parsed, err := ParseCSV(text)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	mapping := BuildFieldMapping(parsed.Headers, nil)
	return conv.Convert(parsed.Rows[0], 0, mapping)
}

func TestConverter_Convert(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := Converter{Now: func() time.Time { return fixed }}

	t.Run("full row", func(t *testing.T) {
		got, err := convertOne(t, conv,
			"Gas Station,City,Fuel Type,MPG Before,Mileage,DTE Before,Price Per Gallon,Gallons,Total Cost,dte_after,Date,Added From Empty\n"+
				"Shell,Austin,Premium 91,31.2,45210,42,$3.49,10.5,36.65,390,2025-02-01 12:29,no\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		want := FuelEntry{
			GasStation:     "Shell",
			GasStationCity: "Austin",
			FuelType:       FuelPremium91,
			MPGBefore:      31.2,
			Mileage:        45210,
			DTEBefore:      42,
			PricePerGallon: 3.49,
			Gallons:        10.5,
			TotalCost:      36.65,
			DTEAfter:       390,
			AddedFromEmpty: false,
		}
		wantDate := time.Date(2025, 2, 1, 12, 29, 0, 0, time.Local)
		if !got.DateGasAdded.Equal(wantDate) {
			t.Errorf("DateGasAdded = %v, want %v", got.DateGasAdded, wantDate)
		}
		got.DateGasAdded = time.Time{}
		if got != want {
			t.Errorf("Convert() = %+v, want %+v", got, want)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		got, err := convertOne(t, conv, "station,mileage\nShell,1000\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if got.GasStationCity != DefaultCity {
			t.Errorf("GasStationCity = %q, want %q", got.GasStationCity, DefaultCity)
		}
		if got.FuelType != FuelRegular87 {
			t.Errorf("FuelType = %q, want %q", got.FuelType, FuelRegular87)
		}
		if !got.DateGasAdded.Equal(fixed) {
			t.Errorf("DateGasAdded = %v, want %v", got.DateGasAdded, fixed)
		}
		if got.AddedFromEmpty {
			t.Error("AddedFromEmpty = true, want false without a DTE reading")
		}
	})

	t.Run("total backfilled", func(t *testing.T) {
		got, err := convertOne(t, conv, "station,mileage,price,gallons\nShell,1000,3.50,10\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if got.TotalCost != 35 {
			t.Errorf("TotalCost = %v, want 35", got.TotalCost)
		}
	})

	t.Run("explicit total kept", func(t *testing.T) {
		got, err := convertOne(t, conv, "station,mileage,price,gallons,total_cost\nShell,1000,3.50,10,30\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if got.TotalCost != 30 {
			t.Errorf("TotalCost = %v, want 30", got.TotalCost)
		}
	})

	t.Run("near empty derived from dte", func(t *testing.T) {
		low, _ := convertOne(t, conv, "station,mileage,dte before\nShell,1000,20\n")
		if !low.AddedFromEmpty {
			t.Error("AddedFromEmpty = false for DTE 20, want true")
		}
		high, _ := convertOne(t, conv, "station,mileage,dte before\nShell,1000,50\n")
		if high.AddedFromEmpty {
			t.Error("AddedFromEmpty = true for DTE 50, want false")
		}
	})

	t.Run("unreadable dte derives nothing", func(t *testing.T) {
		got, _ := convertOne(t, conv, "station,mileage,dte before\nShell,1000,n/a\n")
		if got.AddedFromEmpty || got.DTEBefore != 0 {
			t.Errorf("AddedFromEmpty, DTEBefore = %v, %v, want false, 0 for n/a", got.AddedFromEmpty, got.DTEBefore)
		}
		zero, _ := convertOne(t, conv, "station,mileage,dte before\nShell,1000,0\n")
		if !zero.AddedFromEmpty {
			t.Error("AddedFromEmpty = false for DTE 0, want true")
		}
	})

	t.Run("explicit flag beats dte", func(t *testing.T) {
		got, _ := convertOne(t, conv, "station,mileage,dte before,added from empty\nShell,1000,20,no\n")
		if got.AddedFromEmpty {
			t.Error("AddedFromEmpty = true, want explicit false to win")
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		c := Converter{NearEmptyThreshold: 60, Now: conv.Now}
		got, _ := convertOne(t, c, "station,mileage,dte before\nShell,1000,50\n")
		if !got.AddedFromEmpty {
			t.Error("AddedFromEmpty = false for DTE 50 under threshold 60")
		}
	})
}

func TestConverter_Convert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMsg string
		field   FieldKey
	}{
		{
			name:    "missing station",
			text:    "station,mileage\n ,1000\n",
			wantMsg: "Row 1: Missing gas station",
			field:   FieldGasStation,
		},
		{
			name:    "missing mileage column",
			text:    "station,city,price,gallons\nShell,Austin,3.50,10\n",
			wantMsg: "Row 1: Invalid or missing mileage (got: )",
			field:   FieldMileage,
		},
		{
			name:    "garbage mileage",
			text:    "station,mileage\nShell,unknown\n",
			wantMsg: "Row 1: Invalid or missing mileage (got: unknown)",
			field:   FieldMileage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertOne(t, Converter{}, tt.text)
			if err == nil {
				t.Fatal("Convert() expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Convert() error = %q, want %q", err.Error(), tt.wantMsg)
			}
			var rve *RowValidationError
			if !errors.As(err, &rve) {
				t.Fatalf("Convert() error type = %T, want *RowValidationError", err)
			}
			if rve.Field != tt.field {
				t.Errorf("Field = %q, want %q", rve.Field, tt.field)
			}
			if rve.Line != 2 {
				t.Errorf("Line = %d, want 2", rve.Line)
			}
		})
	}
}

func TestFuelEntry_BackfillTotal(t *testing.T) {
	tests := []struct {
		name  string
		entry FuelEntry
		want  float64
	}{
		{"computed", FuelEntry{PricePerGallon: 3, Gallons: 10}, 30},
		{"kept", FuelEntry{PricePerGallon: 3, Gallons: 10, TotalCost: 25}, 25},
		{"no price", FuelEntry{Gallons: 10}, 0},
		{"no gallons", FuelEntry{PricePerGallon: 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			e.BackfillTotal()
			if e.TotalCost != tt.want {
				t.Errorf("TotalCost = %v, want %v", e.TotalCost, tt.want)
			}
		})
	}
}
