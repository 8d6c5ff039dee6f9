// Package export renders fuel history as CSV, XLSX or PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/metrics"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name from a URL.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName is the download name for an export generated at now.
func (f Format) FileName(now time.Time) string {
	return "gas-log-" + now.Format("2006-01-02") + "." + string(f)
}

// Report is what every format renders.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Entries     []core.FuelEntry
	Vehicles    []core.Vehicle
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r Report) error {
	var err error
	switch f {
	case FormatCSV:
		err = CSV(w, r.Entries)
	case FormatXLSX:
		err = XLSX(w, r)
	case FormatPDF:
		err = PDF(w, r)
	default:
		err = fmt.Errorf("unsupported export format %q", f)
	}
	metrics.IncExport(string(f), err)
	return err
}

// Columns are the CSV headers: the canonical field keys, so an export
// imports back without a mapping.
func Columns() []string {
	keys := core.FieldKeys()
	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = string(k)
	}
	return cols
}

// CSV writes one tab-delimited row per entry under Columns. The importer
// has no quoted-delimiter escaping, so tabs keep commas in station names
// intact; tabs and line breaks inside values become spaces.
func CSV(w io.Writer, entries []core.FuelEntry) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Columns()); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(csvRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(e core.FuelEntry) []string {
	keys := core.FieldKeys()
	rec := make([]string, len(keys))
	for i, k := range keys {
		rec[i] = cellReplacer.Replace(fieldValue(e, k))
	}
	return rec
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func fieldValue(e core.FuelEntry, k core.FieldKey) string {
	switch k {
	case core.FieldGasStation:
		return e.GasStation
	case core.FieldGasStationCity:
		return e.GasStationCity
	case core.FieldFuelType:
		return string(e.FuelType)
	case core.FieldMPGBefore:
		return num(e.MPGBefore)
	case core.FieldMileage:
		return num(e.Mileage)
	case core.FieldDTEBefore:
		return num(e.DTEBefore)
	case core.FieldPricePerGallon:
		return num(e.PricePerGallon)
	case core.FieldGallons:
		return num(e.Gallons)
	case core.FieldTotalCost:
		return num(e.TotalCost)
	case core.FieldDTEAfter:
		return num(e.DTEAfter)
	case core.FieldDateGasAdded:
		return e.DateGasAdded.Format(time.RFC3339)
	case core.FieldAddedFromEmpty:
		return strconv.FormatBool(e.AddedFromEmpty)
	default:
		return ""
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func vehicleNames(vehicles []core.Vehicle) map[string]string {
	names := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		names[v.ID] = v.Name
	}
	return names
}
