package commands

// Command to remove saved charts from the chart directory
// Only chart files directly inside the directory are removed

import (
	"fmt"

	"mgchart/internal/infra/fs"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove saved charts from the chart directory",
	Long: `Remove the files directly inside the chart directory whose extension is a
chart file type (png, jpg, jpeg, tif, tiff, svg, pdf, eps). Subdirectories
are left alone.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	dir := fs.NewChartDir(cfg.Chart.Dir)
	removed, err := dir.Clear()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d chart(s) from %s\n", removed, dir.Path())
	return nil
}
