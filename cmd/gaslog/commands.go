package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/sheets"
	"github.com/spf13/cobra"
)

func (a *app) previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Show how a CSV file would be imported, without saving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, overrides, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			svc := core.NewService(a.serviceConfig(), nil)
			res, err := svc.Preview(data, overrides)
			if err != nil {
				return err
			}
			printPreview(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().String("mapping", "", "YAML file of header -> field overrides")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV file into a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicle := a.v.GetString("vehicle")
			if vehicle == "" {
				return core.ErrNoVehicle
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			data, overrides, err := a.readInput(args[0])
			if err != nil {
				return err
			}

			a.logger.Info("importing", "file", args[0], "vehicle", vehicle, "spreadsheet", store.SpreadsheetID())
			svc := core.NewService(a.serviceConfig(), nil)
			result, err := svc.Import(cmd.Context(), store, core.ImportRequest{
				Owner:     "cli",
				FileName:  filepath.Base(args[0]),
				Data:      data,
				VehicleID: vehicle,
				Overrides: overrides,
			})
			if result != nil {
				printImport(cmd.OutOrStdout(), result)
			}
			if err != nil {
				a.logger.Error("import failed", "err", err, "code", core.MapError(err).Code)
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("mapping", "", "YAML file of header -> field overrides")
	cmd.Flags().String("vehicle", "", "Vehicle id the entries belong to")
	return cmd
}

func (a *app) analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarize the fuel log in a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			entries, err := store.ListAll(ctx)
			if err != nil {
				return err
			}
			vehicles, err := store.ListVehicles(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			switch a.v.GetString("period") {
			case "":
			case "month":
				entries = core.CurrentMonth(entries, now)
			case "year":
				entries = core.CurrentYear(entries, now)
			default:
				return fmt.Errorf("unknown period %q (want month or year)", a.v.GetString("period"))
			}
			printSummary(cmd.OutOrStdout(), core.Summarize(entries, vehicles))
			return nil
		},
	}
	cmd.Flags().String("period", "", "Limit to the current month or year")
	return cmd
}

func (a *app) serviceConfig() core.ServiceConfig {
	return core.ServiceConfig{NearEmptyThreshold: a.v.GetFloat64("near-empty-threshold")}
}

func (a *app) readInput(path string) ([]byte, map[string]core.FieldKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	overrides, err := loadMapping(a.v.GetString("mapping"))
	if err != nil {
		return nil, nil, err
	}
	return data, overrides, nil
}

// store opens the spreadsheet named by --spreadsheet with --token.
func (a *app) store() (*sheets.Store, error) {
	token := a.v.GetString("token")
	id := a.v.GetString("spreadsheet")
	if token == "" {
		return nil, errors.New("--token (or GASLOG_TOKEN) is required")
	}
	if id == "" {
		return nil, errors.New("--spreadsheet (or GASLOG_SPREADSHEET) is required")
	}
	client := sheets.NewClient(token, time.Time{},
		sheets.WithSheetsURL(a.v.GetString("sheets-url")),
		sheets.WithDriveURL(a.v.GetString("drive-url")),
	)
	return sheets.NewStore(client, id), nil
}

func printPreview(w io.Writer, res *core.PreviewResult) {
	fmt.Fprintln(w, "Mapping:")
	headers := make([]string, 0, len(res.Mapping))
	for h := range res.Mapping {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	for _, h := range headers {
		fmt.Fprintf(w, "  %s -> %s\n", h, res.Mapping[h])
	}
	if len(res.Unmapped) > 0 {
		fmt.Fprintf(w, "Unmapped: %v\n", res.Unmapped)
	}
	fmt.Fprintf(w, "Rows: %d valid, %d invalid, %d short rows dropped\n", res.Valid, res.Invalid, res.ShortRows)

	if len(res.Sample) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tSTATION\tCITY\tMILEAGE\tGALLONS\tTOTAL\tFROM EMPTY")
		for _, e := range res.Sample {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%.3f\t%.2f\t%t\n",
				core.FormatDate(e.DateGasAdded), e.GasStation, e.GasStationCity,
				e.Mileage, e.Gallons, e.TotalCost, e.AddedFromEmpty)
		}
		tw.Flush()
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}

func printImport(w io.Writer, r *core.ImportResult) {
	fmt.Fprintf(w, "Imported %d of %d rows (%d failed", r.Succeeded, r.Attempted, r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(w, ", %d already saved", r.Skipped)
	}
	fmt.Fprintln(w, ")")
	if r.Summary != "" {
		fmt.Fprintln(w, r.Summary)
	}
	for _, e := range r.Preview {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}

func printSummary(w io.Writer, s core.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Fill-ups\t%d\n", s.FillUps)
	fmt.Fprintf(tw, "Total spending\t$%.2f\n", s.TotalSpending)
	fmt.Fprintf(tw, "Total gallons\t%.3f\n", s.TotalGallons)
	fmt.Fprintf(tw, "Average MPG\t%.1f\n", s.AverageMPG)
	fmt.Fprintf(tw, "Average price/gal\t$%.3f\n", s.AveragePricePerGal)
	fmt.Fprintf(tw, "Average cost/fill-up\t$%.2f\n", s.AverageCostPerFillUp)
	fmt.Fprintf(tw, "Empty-tank fill-ups\t%.0f%%\n", s.EmptyTankFrequency)
	if s.AverageEfficiency != nil {
		fmt.Fprintf(tw, "Average efficiency\t%.0f%%\n", *s.AverageEfficiency)
	}
	tw.Flush()
}
