package export

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/jung-kurt/gofpdf"
)

type pdfColumn struct {
	title string
	width float64
	align string
	value func(core.FuelEntry) string
}

var pdfColumns = []pdfColumn{
	{"Date", 28, "L", func(e core.FuelEntry) string { return core.FormatDate(e.DateGasAdded) }},
	{"Station", 40, "L", func(e core.FuelEntry) string { return e.GasStation }},
	{"City", 30, "L", func(e core.FuelEntry) string { return e.GasStationCity }},
	{"Fuel", 24, "L", func(e core.FuelEntry) string { return string(e.FuelType) }},
	{"Mileage", 22, "R", func(e core.FuelEntry) string { return fmt.Sprintf("%.0f", e.Mileage) }},
	{"Gallons", 18, "R", func(e core.FuelEntry) string { return fmt.Sprintf("%.2f", e.Gallons) }},
	{"Total", 18, "R", func(e core.FuelEntry) string { return fmt.Sprintf("%.2f", e.TotalCost) }},
}

// PDF writes a summary block followed by an entry table.
func PDF(w io.Writer, r Report) error {
	title := r.Title
	if title == "" {
		title = "Fuel Log"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Generated: "+core.FormatDateTime(r.GeneratedAt))
	pdf.Ln(8)

	s := core.Summarize(r.Entries, r.Vehicles)
	lines := []string{
		fmt.Sprintf("Fill-ups: %d", s.FillUps),
		fmt.Sprintf("Total spending: $%.2f", s.TotalSpending),
		fmt.Sprintf("Total gallons: %.2f", s.TotalGallons),
		fmt.Sprintf("Average MPG: %.1f", s.AverageMPG),
		fmt.Sprintf("Average price/gal: $%.3f", s.AveragePricePerGal),
		fmt.Sprintf("Empty tank frequency: %.0f%%", s.EmptyTankFrequency),
	}
	if s.AverageEfficiency != nil {
		lines = append(lines, fmt.Sprintf("Average efficiency: %.0f%%", *s.AverageEfficiency))
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 6, c.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, e := range r.Entries {
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(c.value(e)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
