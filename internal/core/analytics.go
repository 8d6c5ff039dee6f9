package core

// analytics.go derives the dashboard numbers from a list of entries.
//
// Averages are plain means over the entries passed in; callers filter first
// (FilterEntries, CurrentMonth, CurrentYear). Money totals are summed with
// decimal arithmetic and rounded to cents so a year of fill-ups does not
// drift from what the receipts add up to.

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the aggregate metrics for a set of entries.
type Summary struct {
	FillUps              int      `json:"fill_ups"`
	AverageMPG           float64  `json:"average_mpg"`
	AveragePricePerGal   float64  `json:"average_price_per_gallon"`
	AverageCostPerFillUp float64  `json:"average_cost_per_fill_up"`
	AverageGallons       float64  `json:"average_gallons_per_fill_up"`
	TotalSpending        float64  `json:"total_spending"`
	TotalGallons         float64  `json:"total_gallons"`
	EmptyTankFrequency   float64  `json:"empty_tank_frequency"` // percent
	AverageEfficiency    *float64 `json:"average_efficiency_score,omitempty"`
}

// EfficiencyPoint is one fill-up paired with the one before it.
type EfficiencyPoint struct {
	Date            time.Time `json:"date"`
	Label           string    `json:"label"`
	VehicleID       string    `json:"vehicle_id"`
	Distance        float64   `json:"distance"`
	ActualMPG       float64   `json:"actual_mpg"`
	CostPerMile     float64   `json:"cost_per_mile"`
	ExpectedMPG     float64   `json:"expected_mpg,omitempty"`
	EfficiencyScore *float64  `json:"efficiency_score,omitempty"`
}

// Summarize computes the aggregate metrics for entries.
func Summarize(entries []FuelEntry, vehicles []Vehicle) Summary {
	s := Summary{FillUps: len(entries)}
	if len(entries) == 0 {
		return s
	}

	var mpg, price float64
	spend := decimal.Zero
	gallons := decimal.Zero
	empty := 0
	for _, e := range entries {
		mpg += e.MPGBefore
		price += e.PricePerGallon
		spend = spend.Add(decimal.NewFromFloat(e.TotalCost))
		gallons = gallons.Add(decimal.NewFromFloat(e.Gallons))
		if e.AddedFromEmpty {
			empty++
		}
	}

	n := decimal.NewFromInt(int64(len(entries)))
	s.AverageMPG = mpg / float64(len(entries))
	s.AveragePricePerGal = price / float64(len(entries))
	s.TotalSpending = spend.Round(2).InexactFloat64()
	s.TotalGallons = gallons.Round(3).InexactFloat64()
	s.AverageCostPerFillUp = spend.Div(n).Round(2).InexactFloat64()
	s.AverageGallons = gallons.Div(n).InexactFloat64()
	s.EmptyTankFrequency = float64(empty) / float64(len(entries)) * 100

	var scores []float64
	for _, p := range EfficiencyPoints(entries, vehicles) {
		if p.EfficiencyScore != nil {
			scores = append(scores, *p.EfficiencyScore)
		}
	}
	if len(scores) > 0 {
		var sum float64
		for _, v := range scores {
			sum += v
		}
		avg := sum / float64(len(scores))
		s.AverageEfficiency = &avg
	}

	return s
}

// DistanceBetween returns the miles driven between two odometer readings.
func DistanceBetween(cur, prev FuelEntry) float64 {
	return cur.Mileage - prev.Mileage
}

// ActualMPG returns the miles per gallon achieved since prev. ok is false
// when the distance or the gallons are not positive.
func ActualMPG(cur, prev FuelEntry) (float64, bool) {
	miles := DistanceBetween(cur, prev)
	if miles <= 0 || cur.Gallons <= 0 {
		return 0, false
	}
	return miles / cur.Gallons, true
}

// CostPerMile returns what the miles since prev cost.
func CostPerMile(cur, prev FuelEntry) (float64, bool) {
	miles := DistanceBetween(cur, prev)
	if miles <= 0 {
		return 0, false
	}
	return cur.TotalCost / miles, true
}

// EfficiencyScore is actual MPG as a percentage of expected MPG.
func EfficiencyScore(actual, expected float64) (float64, bool) {
	if expected <= 0 {
		return 0, false
	}
	return actual / expected * 100, true
}

// EfficiencyPoints sorts entries by date and pairs each one with the entry
// before it. Pairs without a usable MPG are left out.
func EfficiencyPoints(entries []FuelEntry, vehicles []Vehicle) []EfficiencyPoint {
	sorted := SortByDate(entries)

	points := make([]EfficiencyPoint, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		cur, prev := sorted[i], sorted[i-1]
		mpg, ok := ActualMPG(cur, prev)
		if !ok {
			continue
		}
		p := EfficiencyPoint{
			Date:      cur.DateGasAdded,
			Label:     FormatDate(cur.DateGasAdded),
			VehicleID: cur.VehicleID,
			Distance:  DistanceBetween(cur, prev),
			ActualMPG: mpg,
		}
		p.CostPerMile, _ = CostPerMile(cur, prev)
		if v, found := FindVehicle(vehicles, cur.VehicleID); found {
			p.ExpectedMPG = v.ExpectedMPG
			if score, ok := EfficiencyScore(mpg, v.ExpectedMPG); ok {
				p.EfficiencyScore = &score
			}
		}
		points = append(points, p)
	}
	return points
}

// SortByDate returns a copy of entries ordered oldest first.
func SortByDate(entries []FuelEntry) []FuelEntry {
	out := append([]FuelEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateGasAdded.Before(out[j].DateGasAdded)
	})
	return out
}

// EntryFilter narrows a list of entries. Zero fields match everything.
type EntryFilter struct {
	Search    string    // case-insensitive match on station or city
	Start     time.Time // inclusive
	End       time.Time // inclusive
	VehicleID string
}

// FilterEntries returns the entries matching f, preserving order.
func FilterEntries(entries []FuelEntry, f EntryFilter) []FuelEntry {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]FuelEntry, 0, len(entries))
	for _, e := range entries {
		if f.VehicleID != "" && e.VehicleID != f.VehicleID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.GasStation), search) &&
			!strings.Contains(strings.ToLower(e.GasStationCity), search) {
			continue
		}
		if !f.Start.IsZero() && e.DateGasAdded.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && e.DateGasAdded.After(f.End) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CurrentMonth returns the entries dated in now's calendar month.
func CurrentMonth(entries []FuelEntry, now time.Time) []FuelEntry {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return FilterEntries(entries, EntryFilter{Start: start, End: end})
}

// CurrentYear returns the entries dated in now's calendar year.
func CurrentYear(entries []FuelEntry, now time.Time) []FuelEntry {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return FilterEntries(entries, EntryFilter{Start: start, End: end})
}

// FormatDate renders t the way the history table shows it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

// FormatDateTime renders t with its time of day.
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 02, 2006 15:04")
}
