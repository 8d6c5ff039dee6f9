// Package core provides the business logic for fuel log imports and analytics.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"
)

// FuelType is the grade of fuel bought at a fill-up.
type FuelType string

const (
	FuelRegular87  FuelType = "regular-87"
	FuelMidGrade89 FuelType = "mid-grade-89"
	FuelPremium91  FuelType = "premium-91"
	FuelPremium93  FuelType = "premium-93"
	FuelDiesel     FuelType = "diesel"
	FuelE85        FuelType = "E85"
	FuelE15        FuelType = "E15"
	FuelE10        FuelType = "E10"
)

// FuelTypes lists every supported grade in display order.
var FuelTypes = []FuelType{
	FuelRegular87, FuelMidGrade89, FuelPremium91, FuelPremium93,
	FuelDiesel, FuelE85, FuelE15, FuelE10,
}

// Valid reports whether t is one of the supported grades.
func (t FuelType) Valid() bool {
	for _, ft := range FuelTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// NearEmptyThreshold is the distance-to-empty below which a fill-up counts
// as "from empty" when the input does not say otherwise.
const NearEmptyThreshold = 35.0

// FuelEntry is a single fill-up event.
type FuelEntry struct {
	ID             string    `json:"id"`
	VehicleID      string    `json:"vehicle_id"`
	GasStation     string    `json:"gas_station"`
	GasStationCity string    `json:"gas_station_city"`
	FuelType       FuelType  `json:"fuel_type"`
	MPGBefore      float64   `json:"mpg_before"`
	Mileage        float64   `json:"mileage"`
	DTEBefore      float64   `json:"dte_before"`
	PricePerGallon float64   `json:"price_per_gallon"`
	Gallons        float64   `json:"gallons"`
	TotalCost      float64   `json:"total_cost"`
	DTEAfter       float64   `json:"dte_after"`
	DateGasAdded   time.Time `json:"date_gas_added"`
	AddedFromEmpty bool      `json:"added_from_empty"`
}

// BackfillTotal sets TotalCost to price x gallons when the total is missing
// and both factors are known.
func (e *FuelEntry) BackfillTotal() {
	if e.TotalCost == 0 && e.PricePerGallon > 0 && e.Gallons > 0 {
		e.TotalCost = e.PricePerGallon * e.Gallons
	}
}

// Vehicle owns zero or more fuel entries through FuelEntry.VehicleID.
type Vehicle struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Make        string  `json:"make,omitempty"`
	Model       string  `json:"model,omitempty"`
	Year        int     `json:"year,omitempty"`
	ExpectedMPG float64 `json:"expected_mpg,omitempty"`
	IsDefault   bool    `json:"is_default"`
}

// RawRow is one parsed CSV line: original header -> raw value.
type RawRow struct {
	Line   int               // 1-based line number in the source text
	Values map[string]string // keyed by the original header
}

// Get returns the raw value for header, or "" if absent.
func (r RawRow) Get(header string) string {
	return r.Values[header]
}

// ParsedCSV is the output of ParseCSV.
type ParsedCSV struct {
	Headers   []string // retained headers in file order
	Delimiter rune
	Rows      []RawRow
	Skipped   int // short rows dropped during parsing
}

// EntryStore persists fuel entries. The sheets package provides the
// production implementation.
type EntryStore interface {
	CreateOne(ctx context.Context, entry FuelEntry) error
	CreateBatch(ctx context.Context, entries []FuelEntry) error
	ListAll(ctx context.Context) ([]FuelEntry, error)
}

// SessionChecker is implemented by stores that can verify the caller's
// session before any write is attempted.
type SessionChecker interface {
	CheckSession(ctx context.Context) error
}

// VehicleStore persists vehicles.
type VehicleStore interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	AppendVehicle(ctx context.Context, v Vehicle) error
	ReplaceVehicles(ctx context.Context, vehicles []Vehicle) error
}

// FailedRow contains information about a row that could not be imported.
type FailedRow struct {
	LineNumber int               `json:"line"`
	Reason     string            `json:"reason"`
	Data       map[string]string `json:"data,omitempty"`
}

// ImportResult contains the final result of an import operation.
type ImportResult struct {
	ImportID     string        `json:"import_id"`
	FileName     string        `json:"file_name,omitempty"`
	VehicleID    string        `json:"vehicle_id"`
	Attempted    int           `json:"attempted"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	Skipped      int           `json:"skipped"` // already persisted before the fallback pass
	UsedFallback bool          `json:"used_fallback"`
	Errors       []string      `json:"errors"`
	Preview      []string      `json:"preview"`
	Summary      string        `json:"summary,omitempty"`
	FailedRows   []FailedRow   `json:"failed_rows,omitempty"`
	Unmapped     []string      `json:"unmapped,omitempty"`
	Entries      []FuelEntry   `json:"-"`
	Duration     time.Duration `json:"duration"`
}

// PreviewResult describes what an import would do without persisting.
type PreviewResult struct {
	Headers    []string            `json:"headers"`
	Mapping    map[string]FieldKey `json:"mapping"`
	Unmapped   []string            `json:"unmapped"`
	TotalRows  int                 `json:"total_rows"`
	ShortRows  int                 `json:"short_rows"`
	Valid      int                 `json:"valid"`
	Invalid    int                 `json:"invalid"`
	Sample     []FuelEntry         `json:"sample"`
	Errors     []string            `json:"errors"`
	FailedRows []FailedRow         `json:"failed_rows,omitempty"`
}
