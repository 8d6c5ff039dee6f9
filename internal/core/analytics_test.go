package core

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func sampleEntries() []FuelEntry {
	return []FuelEntry{
		// Out of date order on purpose.
		{ID: "e3", VehicleID: "v1", GasStation: "Exxon", GasStationCity: "Waco", MPGBefore: 30, Mileage: 1600, PricePerGallon: 3.30, Gallons: 10, TotalCost: 33.00, DateGasAdded: day(20)},
		{ID: "e1", VehicleID: "v1", GasStation: "Shell", GasStationCity: "Austin", MPGBefore: 28, Mileage: 1000, PricePerGallon: 3.50, Gallons: 10, TotalCost: 35.00, DateGasAdded: day(1), AddedFromEmpty: true},
		{ID: "e2", VehicleID: "v1", GasStation: "BP", GasStationCity: "Dallas", MPGBefore: 32, Mileage: 1300, PricePerGallon: 3.40, Gallons: 12, TotalCost: 40.80, DateGasAdded: day(10)},
	}
}

func TestSummarize(t *testing.T) {
	vehicles := []Vehicle{{ID: "v1", Name: "Civic", ExpectedMPG: 30}}
	s := Summarize(sampleEntries(), vehicles)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"AverageMPG", s.AverageMPG, 30},
		{"AveragePricePerGal", s.AveragePricePerGal, 3.40},
		{"TotalSpending", s.TotalSpending, 108.80},
		{"TotalGallons", s.TotalGallons, 32},
		{"AverageCostPerFillUp", s.AverageCostPerFillUp, 36.27},
		{"EmptyTankFrequency", s.EmptyTankFrequency, 100.0 / 3},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.FillUps != 3 {
		t.Errorf("FillUps = %d, want 3", s.FillUps)
	}

	// Pairs: e1->e2 = 300mi/12gal = 25 mpg, e2->e3 = 300mi/10gal = 30 mpg.
	if s.AverageEfficiency == nil {
		t.Fatal("AverageEfficiency = nil, want a score")
	}
	want := (25.0/30*100 + 30.0/30*100) / 2
	if !approx(*s.AverageEfficiency, want) {
		t.Errorf("AverageEfficiency = %v, want %v", *s.AverageEfficiency, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.FillUps != 0 || s.TotalSpending != 0 || s.AverageMPG != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero summary", s)
	}
	if s.AverageEfficiency != nil {
		t.Error("AverageEfficiency should be nil with no entries")
	}
}

func TestSummarize_NoExpectedMPG(t *testing.T) {
	s := Summarize(sampleEntries(), []Vehicle{{ID: "v1", Name: "Civic"}})
	if s.AverageEfficiency != nil {
		t.Errorf("AverageEfficiency = %v, want nil without expected MPG", *s.AverageEfficiency)
	}
}

func TestSummarize_CentsDoNotDrift(t *testing.T) {
	entries := make([]FuelEntry, 100)
	for i := range entries {
		entries[i] = FuelEntry{TotalCost: 0.1}
	}
	s := Summarize(entries, nil)
	if s.TotalSpending != 10 {
		t.Errorf("TotalSpending = %v, want exactly 10", s.TotalSpending)
	}
}

func TestActualMPG(t *testing.T) {
	tests := []struct {
		name   string
		cur    FuelEntry
		prev   FuelEntry
		want   float64
		wantOK bool
	}{
		{"normal", FuelEntry{Mileage: 1300, Gallons: 10}, FuelEntry{Mileage: 1000}, 30, true},
		{"no gallons", FuelEntry{Mileage: 1300}, FuelEntry{Mileage: 1000}, 0, false},
		{"odometer went back", FuelEntry{Mileage: 900, Gallons: 10}, FuelEntry{Mileage: 1000}, 0, false},
		{"same reading", FuelEntry{Mileage: 1000, Gallons: 10}, FuelEntry{Mileage: 1000}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActualMPG(tt.cur, tt.prev)
			if ok != tt.wantOK || !approx(got, tt.want) {
				t.Errorf("ActualMPG() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCostPerMile(t *testing.T) {
	got, ok := CostPerMile(FuelEntry{Mileage: 1300, TotalCost: 30}, FuelEntry{Mileage: 1000})
	if !ok || !approx(got, 0.1) {
		t.Errorf("CostPerMile() = %v, %v, want 0.1, true", got, ok)
	}
	if _, ok := CostPerMile(FuelEntry{Mileage: 1000}, FuelEntry{Mileage: 1000}); ok {
		t.Error("CostPerMile() ok = true for zero distance")
	}
}

func TestEfficiencyScore(t *testing.T) {
	tests := []struct {
		actual, expected float64
		want             float64
		wantOK           bool
	}{
		{30, 30, 100, true},
		{27, 30, 90, true},
		{33, 30, 110, true},
		{30, 0, 0, false},
		{30, -5, 0, false},
	}

	for _, tt := range tests {
		got, ok := EfficiencyScore(tt.actual, tt.expected)
		if ok != tt.wantOK || !approx(got, tt.want) {
			t.Errorf("EfficiencyScore(%v, %v) = %v, %v, want %v, %v", tt.actual, tt.expected, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEfficiencyPoints(t *testing.T) {
	points := EfficiencyPoints(sampleEntries(), []Vehicle{{ID: "v1", ExpectedMPG: 25}})
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if !points[0].Date.Equal(day(10)) || !points[1].Date.Equal(day(20)) {
		t.Errorf("points not in date order: %v, %v", points[0].Date, points[1].Date)
	}
	if !approx(points[0].ActualMPG, 25) || !approx(points[1].ActualMPG, 30) {
		t.Errorf("ActualMPG = %v, %v, want 25, 30", points[0].ActualMPG, points[1].ActualMPG)
	}
	if points[0].EfficiencyScore == nil || !approx(*points[0].EfficiencyScore, 100) {
		t.Errorf("EfficiencyScore[0] = %v, want 100", points[0].EfficiencyScore)
	}
	if points[0].Label != "Mar 10, 2025" {
		t.Errorf("Label = %q, want %q", points[0].Label, "Mar 10, 2025")
	}
	if points[0].Distance != 300 {
		t.Errorf("Distance = %v, want 300", points[0].Distance)
	}
}

func TestFilterEntries(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, FuelEntry{ID: "e4", VehicleID: "v2", GasStation: "Shell", GasStationCity: "Houston", DateGasAdded: day(15)})

	tests := []struct {
		name   string
		filter EntryFilter
		want   []string
	}{
		{"no filter", EntryFilter{}, []string{"e3", "e1", "e2", "e4"}},
		{"station search", EntryFilter{Search: "shell"}, []string{"e1", "e4"}},
		{"city search", EntryFilter{Search: "DALL"}, []string{"e2"}},
		{"vehicle", EntryFilter{VehicleID: "v2"}, []string{"e4"}},
		{"inclusive range", EntryFilter{Start: day(10), End: day(15)}, []string{"e2", "e4"}},
		{"open end", EntryFilter{Start: day(15)}, []string{"e3", "e4"}},
		{"combined", EntryFilter{Search: "shell", VehicleID: "v1"}, []string{"e1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEntries(entries, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCurrentMonthAndYear(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
	entries := []FuelEntry{
		{ID: "feb", DateGasAdded: time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)},
		{ID: "mar-first", DateGasAdded: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "mar-last", DateGasAdded: time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)},
		{ID: "apr", DateGasAdded: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "last-year", DateGasAdded: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	month := CurrentMonth(entries, now)
	if len(month) != 2 || month[0].ID != "mar-first" || month[1].ID != "mar-last" {
		t.Errorf("CurrentMonth() = %v, want [mar-first mar-last]", ids(month))
	}

	year := CurrentYear(entries, now)
	if len(year) != 4 {
		t.Errorf("CurrentYear() = %v, want 4 entries from 2025", ids(year))
	}
}

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2025, 2, 1, 12, 29, 0, 0, time.UTC))
	if got != "Feb 01, 2025" {
		t.Errorf("FormatDate() = %q, want %q", got, "Feb 01, 2025")
	}
}

func ids(entries []FuelEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
