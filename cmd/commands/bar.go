package commands

// Command to plot the columns of a CSV file as bars
// Builds the option map from flags and hands it to the bar plotter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mgchart/internal/features/barplot"
	"mgchart/internal/features/finalise"
	"mgchart/internal/frame"
	"mgchart/internal/infra/log"
	"mgchart/internal/kwargs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var barCmd = &cobra.Command{
	Use:   "bar",
	Short: "Plot the columns of a CSV file as grouped or stacked bars",
	Long: `Read a CSV file whose first column holds dates and draw one bar per row
for every other column, side by side or stacked with --stacked.`,
	Example: `  mgchart bar --csv balance.csv --title "Budget balance" --stacked --y0
  mgchart bar --csv gdp.csv --title GDP --bar-legend=false --max-ticks 8`,
	RunE: runBar,
}

var barFlags struct {
	csv      string
	stacked  bool
	legend   bool
	width    float64
	rotation float64
	maxTicks int
	strings  map[string]*string
	bools    map[string]*bool
}

var barBoolKeys = []string{
	finalise.KeyShow, finalise.KeyZeroY, finalise.KeyY0,
	finalise.KeyDontSave, kwargs.Verbose,
}

func init() {
	f := barCmd.Flags()
	f.StringVar(&barFlags.csv, "csv", "", "CSV file to plot (required)")
	f.BoolVar(&barFlags.stacked, "stacked", false, "Stack the columns instead of grouping them")
	f.BoolVar(&barFlags.legend, flagName(barplot.KeyBarLegend), true, "Show a legend naming the columns")
	f.Float64Var(&barFlags.width, barplot.KeyWidth, 0, "Bar width as a share of each category, 0 uses bars.width")
	f.Float64Var(&barFlags.rotation, barplot.KeyRotation, 90, "Label rotation in degrees for irregular dates")
	f.IntVar(&barFlags.maxTicks, flagName(barplot.KeyMaxTicks), 10, "Most labels on a regular date axis")

	barFlags.strings = map[string]*string{}
	for _, key := range lineStringKeys {
		barFlags.strings[key] = f.String(flagName(key), "", "Chart "+key)
	}
	barFlags.bools = map[string]*bool{}
	for _, key := range barBoolKeys {
		barFlags.bools[key] = f.Bool(flagName(key), false, "Set "+key)
	}
	barCmd.MarkFlagRequired("csv")
}

func runBar(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	data, err := frame.ReadCSVFile(barFlags.csv)
	if err != nil {
		return err
	}

	fin := finalise.New(cfg.Chart, nil)
	path, err := barplot.New(fin, cfg.Bars).Plot(ctx, data, barOptions(cmd))
	if err != nil {
		return err
	}
	if path == "" {
		log.LogWarn("Nothing to plot", zap.String("csv", barFlags.csv))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// barOptions collects only the flags the user set.
func barOptions(cmd *cobra.Command) kwargs.Options {
	opts := kwargs.Options{}
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	for key, v := range barFlags.strings {
		if changed(flagName(key)) {
			opts[key] = *v
		}
	}
	for key, v := range barFlags.bools {
		if changed(flagName(key)) {
			opts[key] = *v
		}
	}
	if changed("stacked") {
		opts[barplot.KeyStacked] = barFlags.stacked
	}
	if changed(flagName(barplot.KeyBarLegend)) {
		opts[barplot.KeyBarLegend] = barFlags.legend
	}
	if changed(barplot.KeyWidth) {
		opts[barplot.KeyWidth] = barFlags.width
	}
	if changed(barplot.KeyRotation) {
		opts[barplot.KeyRotation] = barFlags.rotation
	}
	if changed(flagName(barplot.KeyMaxTicks)) {
		opts[barplot.KeyMaxTicks] = barFlags.maxTicks
	}
	return opts
}
