package core

// convert.go turns a RawRow into a FuelEntry.
//
// These functions handle the messy reality of hand-kept fuel logs:
//   - Free-text fuel grades ("Premium 91", "super unleaded", "E85 flex")
//   - Several date formats, including "2025-02-01 12:29"
//   - Loose booleans ("yes", "1", "ran empty")
//   - Currency symbols and stray text around numbers
//
// Parsing never fails a row on its own. Only a missing station or a zero
// mileage produces a RowValidationError.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericPrefix matches the leading float literal of a string.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// dateTimePattern extracts "YYYY-MM-DD HH:MM" from otherwise unparseable text.
var dateTimePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{2}):(\d{2})`)

// timestampLayouts are tried in order before falling back to dateTimePattern.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 02, 2006",
}

// DefaultCity is used when a row has no station city.
const DefaultCity = "Unknown"

// ParseNumber parses the leading number in s, returning 0 when there is none.
// Currency symbols and thousands separators are removed first.
func ParseNumber(s string) float64 {
	f, _ := parseNumber(s)
	return f
}

// parseNumber is ParseNumber that also reports whether s held a number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("$", "", "\u20ac", "", "\u00a3", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)

	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseFuelType classifies a free-text grade. Unknown text is regular-87.
func ParseFuelType(s string) FuelType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "87") || strings.Contains(s, "regular"):
		return FuelRegular87
	case strings.Contains(s, "89") || strings.Contains(s, "mid"):
		return FuelMidGrade89
	case strings.Contains(s, "91") || (strings.Contains(s, "premium") && !strings.Contains(s, "93")):
		return FuelPremium91
	case strings.Contains(s, "93") || strings.Contains(s, "super"):
		return FuelPremium93
	case strings.Contains(s, "diesel"):
		return FuelDiesel
	case strings.Contains(s, "e85"):
		return FuelE85
	case strings.Contains(s, "e15"):
		return FuelE15
	case strings.Contains(s, "e10"):
		return FuelE10
	default:
		return FuelRegular87
	}
}

// ParseTimestamp parses s with the known layouts, then the
// "YYYY-MM-DD HH:MM" pattern. ok is false when nothing matched.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	if m := dateTimePattern.FindStringSubmatch(s); m != nil {
		iso := m[1] + "T" + m[2] + ":" + m[3] + ":00"
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", iso, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseFlag reports whether s reads as an affirmative "added from empty".
func ParseFlag(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || strings.Contains(s, "empty")
}

// Converter builds FuelEntries from RawRows.
type Converter struct {
	// NearEmptyThreshold derives AddedFromEmpty from DTEBefore when the
	// row has no explicit flag. Zero means NearEmptyThreshold.
	NearEmptyThreshold float64

	// Now supplies the timestamp for rows without a parseable date.
	Now func() time.Time
}

// ConvertRow converts one row with the default Converter.
func ConvertRow(row RawRow, index int, mapping FieldMapping) (FuelEntry, error) {
	return Converter{}.Convert(row, index, mapping)
}

// Convert builds an entry from row. index is the 0-based position of the
// row among the parsed data rows and is reported as index+1 in errors.
func (c Converter) Convert(row RawRow, index int, mapping FieldMapping) (FuelEntry, error) {
	value := func(key FieldKey) string {
		if h, ok := mapping.HeaderFor(key); ok {
			return row.Get(h)
		}
		return row.Get(string(key))
	}

	entry := FuelEntry{
		GasStation:     strings.TrimSpace(value(FieldGasStation)),
		GasStationCity: strings.TrimSpace(value(FieldGasStationCity)),
		FuelType:       ParseFuelType(value(FieldFuelType)),
		MPGBefore:      ParseNumber(value(FieldMPGBefore)),
		Mileage:        ParseNumber(value(FieldMileage)),
		PricePerGallon: ParseNumber(value(FieldPricePerGallon)),
		Gallons:        ParseNumber(value(FieldGallons)),
		TotalCost:      ParseNumber(value(FieldTotalCost)),
		DTEAfter:       ParseNumber(value(FieldDTEAfter)),
	}
	if entry.GasStationCity == "" {
		entry.GasStationCity = DefaultCity
	}
	dte, dteOK := parseNumber(value(FieldDTEBefore))
	entry.DTEBefore = dte

	if t, ok := ParseTimestamp(value(FieldDateGasAdded)); ok {
		entry.DateGasAdded = t
	} else {
		entry.DateGasAdded = c.now()
	}

	if flag := strings.TrimSpace(value(FieldAddedFromEmpty)); flag != "" {
		entry.AddedFromEmpty = ParseFlag(flag)
	} else if dteOK {
		entry.AddedFromEmpty = entry.DTEBefore < c.threshold()
	}

	if entry.GasStation == "" {
		return FuelEntry{}, &RowValidationError{
			Row:   index + 1,
			Line:  row.Line,
			Field: FieldGasStation,
			Msg:   "Missing gas station",
		}
	}
	if entry.Mileage == 0 {
		raw := value(FieldMileage)
		return FuelEntry{}, &RowValidationError{
			Row:   index + 1,
			Line:  row.Line,
			Field: FieldMileage,
			Value: raw,
			Msg:   "Invalid or missing mileage (got: " + raw + ")",
		}
	}

	entry.BackfillTotal()
	return entry, nil
}

func (c Converter) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Converter) threshold() float64 {
	if c.NearEmptyThreshold > 0 {
		return c.NearEmptyThreshold
	}
	return NearEmptyThreshold
}
