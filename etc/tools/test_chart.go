package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"mgchart/internal/config"
	"mgchart/internal/features/finalise"
	"mgchart/internal/features/lineplot"
	"mgchart/internal/frame"
	"mgchart/internal/infra/fs"
	"mgchart/internal/kwargs"
)

// go run etc/tools/test_chart.go
// writes a sample seasonal/trend chart to etc/charts/
func main() {
	fmt.Println("Generating test chart...")

	data, err := sampleFrame()
	if err != nil {
		fmt.Printf("Error building sample data: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	dir := fs.NewChartDir("")
	if err := dir.Set("etc/charts"); err != nil {
		fmt.Printf("Error creating chart directory: %v\n", err)
		os.Exit(1)
	}
	plotter := lineplot.New(finalise.New(cfg.Chart, dir), cfg.Lines)

	paths, err := plotter.SeasTrend(context.Background(), data, kwargs.Options{
		finalise.KeyTitle:   "Sample series",
		finalise.KeyYLabel:  "Index",
		finalise.KeyRFooter: "Source: generated",
		finalise.KeyLFooter: "Seasonally adjusted and trend",
		lineplot.KeyStarts:  []string{"", "2020-01"},
		lineplot.KeyTags:    []string{"", "-recent"},
	})
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Printf("Chart generated successfully: %s\n", p)
	}
	fmt.Println("Open the files to see the result!")
}

func sampleFrame() (*frame.Frame, error) {
	const months = 120
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	index := make([]time.Time, months)
	seas := make([]float64, months)
	trend := make([]float64, months)
	for i := range index {
		index[i] = start.AddDate(0, i, 0)
		trend[i] = 100 + 0.3*float64(i)
		seas[i] = trend[i] + 2*math.Sin(float64(i)/2)
	}
	return frame.New(index, []string{"Seasonally adjusted", "Trend"}, [][]float64{seas, trend})
}
