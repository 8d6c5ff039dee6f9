// Command gaslog previews and imports fuel-log CSV files from the terminal.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	// .env is optional for the CLI; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:           "gaslog",
		Short:         "Preview and import fuel-log CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (yaml, json or toml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("token", "", "Google OAuth access token")
	flags.String("spreadsheet", "", "Spreadsheet id")
	flags.String("sheets-url", "", "Sheets API root endpoint override")
	flags.String("drive-url", "", "Drive API root endpoint override")
	flags.Float64("near-empty-threshold", 35, "Range below which a fill-up counts as from empty")

	root.AddCommand(a.previewCmd(), a.importCmd(), a.analyticsCmd())
	return root
}

// init binds flags, GASLOG_* variables and the optional config file, then
// builds the logger.
func (a *app) init(cmd *cobra.Command, cfgFile string) error {
	a.v.SetEnvPrefix("GASLOG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := a.v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	level, err := log.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		level = log.InfoLevel
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "gaslog",
		ReportTimestamp: true,
		Level:           level,
	})
	return nil
}
