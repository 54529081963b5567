package commands

// Command to plot the columns of a CSV file as lines
// Builds the option map from flags and hands it to the line plotter
// One chart is written per --starts date, and per column with --multi-column

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mgchart/internal/features/finalise"
	"mgchart/internal/features/lineplot"
	"mgchart/internal/frame"
	"mgchart/internal/infra/log"
	"mgchart/internal/kwargs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Plot every column of a CSV file as a line chart",
	Long: `Read a CSV file whose first column holds dates and plot every other
column as a line. With several --starts dates one chart is written per date.`,
	Example: `  mgchart line --csv gdp.csv --title "GDP growth" --rfooter "Source: ABS" --y0
  mgchart line --csv cpi.csv --title CPI --starts 2000-01-01 --starts 2019-01-01
  mgchart line --csv rates.csv --title "Rates: " --multi-column`,
	RunE: runLine,
}

var lineFlags struct {
	csv         string
	seasTrend   bool
	multiColumn bool
	starts    []string
	tags      []string
	strings   map[string]*string
	bools     map[string]*bool
}

// string and bool flags passed through to the finaliser under the same name
var (
	lineStringKeys = []string{
		finalise.KeyTitle, finalise.KeyXLabel, finalise.KeyYLabel,
		finalise.KeyPreTag,
		finalise.KeyLFooter, finalise.KeyRFooter, finalise.KeyLHeader, finalise.KeyRHeader,
		finalise.KeyYScale,
	}
	lineBoolKeys = []string{
		finalise.KeyShow, finalise.KeyZeroY, finalise.KeyY0, finalise.KeyLegend,
		finalise.KeyDontSave, lineplot.KeyDropNA, kwargs.Verbose,
	}
)

func init() {
	f := lineCmd.Flags()
	f.StringVar(&lineFlags.csv, "csv", "", "CSV file to plot (required)")
	f.BoolVar(&lineFlags.seasTrend, "seas-trend", false, "Plot a seasonally adjusted series and its trend")
	f.BoolVar(&lineFlags.multiColumn, "multi-column", false, "Write one chart per column, titled by the column name")
	f.StringSliceVar(&lineFlags.starts, "starts", nil, "Start dates, one chart per date (YYYY-MM-DD)")
	f.StringSliceVar(&lineFlags.tags, "tags", nil, "File name tags, one per start date")

	lineFlags.strings = map[string]*string{}
	for _, key := range lineStringKeys {
		lineFlags.strings[key] = f.String(flagName(key), "", "Chart "+key)
	}
	lineFlags.bools = map[string]*bool{}
	for _, key := range lineBoolKeys {
		lineFlags.bools[key] = f.Bool(flagName(key), false, "Set "+key)
	}
	lineCmd.MarkFlagRequired("csv")
	lineCmd.MarkFlagsMutuallyExclusive("seas-trend", "multi-column")
}

func runLine(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	data, err := frame.ReadCSVFile(lineFlags.csv)
	if err != nil {
		return err
	}

	opts := lineOptions(cmd)
	fin := finalise.New(cfg.Chart, nil)
	plotter := lineplot.New(fin, cfg.Lines)

	plot := plotter.Plot
	switch {
	case lineFlags.seasTrend:
		plot = plotter.SeasTrend
	case lineFlags.multiColumn:
		plot = plotter.MultiColumn
	}
	paths, err := plot(ctx, data, opts)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.LogWarn("Nothing to plot", zap.String("csv", lineFlags.csv))
		return nil
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// lineOptions collects only the flags the user set, so unset flags fall
// back to the plotter and finaliser defaults.
func lineOptions(cmd *cobra.Command) kwargs.Options {
	opts := kwargs.Options{}
	changed := func(key string) bool {
		return cmd.Flags().Changed(flagName(key))
	}
	for key, v := range lineFlags.strings {
		if changed(key) {
			opts[key] = *v
		}
	}
	for key, v := range lineFlags.bools {
		if changed(key) {
			opts[key] = *v
		}
	}
	if len(lineFlags.starts) > 0 {
		opts[lineplot.KeyStarts] = lineFlags.starts
	}
	if len(lineFlags.tags) > 0 {
		opts[lineplot.KeyTags] = lineFlags.tags
	}
	return opts
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
