// Package barplot draws the columns of a table as grouped or stacked bars,
// one category per row, and finalises the chart.
package barplot

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"mgchart/internal/chart"
	"mgchart/internal/config"
	"mgchart/internal/features/finalise"
	"mgchart/internal/frame"
	logging "mgchart/internal/infra/log"
	"mgchart/internal/kwargs"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Option names owned by the bar plot. Everything else goes to Finalise.
const (
	KeyColor     = "color"
	KeyWidth     = "width"
	KeyStacked   = "stacked"
	KeyRotation  = "rotation"
	KeyBarLegend = "bar_legend"
	KeyMaxTicks  = "max_ticks"
)

const (
	defaultRotation = 90.0
	defaultMaxTicks = 10
	minMaxTicks     = 4

	// share of the figure width the data area gets, used to size the bars
	plotShare = 0.85
)

var ErrNoFrame = errors.New("no data to plot")

var ownExpected = kwargs.Expected{
	KeyColor:     kwargs.String | kwargs.StringList,
	KeyWidth:     kwargs.Number,
	KeyStacked:   kwargs.Bool,
	KeyRotation:  kwargs.Number,
	KeyBarLegend: kwargs.Bool,
	KeyMaxTicks:  kwargs.Int,
}

// Expected is what Plot and Draw accept: the bar options plus the
// finalizer's.
var Expected = kwargs.Merge(finalise.Expected, ownExpected)

// Plotter builds bar charts and hands them to a Finalizer.
type Plotter struct {
	fin   *finalise.Finalizer
	width float64
}

// New returns a Plotter. A bar width outside (0, 1] falls back to the
// default.
func New(fin *finalise.Finalizer, bars config.BarsConfig) *Plotter {
	if bars.Width <= 0 || bars.Width > 1 {
		bars.Width = config.Default().Bars.Width
	}
	return &Plotter{fin: fin, width: bars.Width}
}

// Plot draws f as bars and finalises the chart. It returns the saved path,
// or "" when nothing was written.
func (p *Plotter) Plot(ctx context.Context, f *frame.Frame, opts kwargs.Options) (string, error) {
	if err := kwargs.Validate(opts, Expected, "bar_plot"); err != nil {
		return "", err
	}
	kwargs.Report(opts, "bar_plot")

	c, err := p.draw(f, opts)
	if err != nil {
		return "", err
	}
	path, err := p.fin.Finalise(ctx, c, finaliseOptions(opts))
	if err != nil {
		return "", fmt.Errorf("failed to finalise bar plot: %w", err)
	}
	return path, nil
}

// Draw builds the bar chart without finalising it.
func (p *Plotter) Draw(f *frame.Frame, opts kwargs.Options) (*chart.Chart, error) {
	if err := kwargs.Validate(opts, Expected, "bar_plot"); err != nil {
		return nil, err
	}
	return p.draw(f, opts)
}

// finaliseOptions keeps only what Finalise understands. The legend is on
// unless bar_legend is false or a legend option was given.
func finaliseOptions(opts kwargs.Options) kwargs.Options {
	out := opts.Only(finalise.Expected.Keys()...)
	legend := true
	if _, ok := opts[KeyBarLegend]; ok {
		legend = opts.Bool(KeyBarLegend)
	}
	if legend && !out.Has(finalise.KeyLegend) {
		out[finalise.KeyLegend] = true
	}
	return out
}

func (p *Plotter) draw(f *frame.Frame, opts kwargs.Options) (*chart.Chart, error) {
	if f == nil {
		return nil, ErrNoFrame
	}
	c := chart.New()
	if f.Len() == 0 {
		return c, nil
	}

	names := f.Names()
	colors, ok := opts.Strings(KeyColor)
	if !ok || len(colors) == 0 {
		colors = chart.ColorList(len(names))
	}
	share := p.width
	if w, ok := opts.Float(KeyWidth); ok {
		share = w
	}
	if share <= 0 || share > 1 {
		return nil, fmt.Errorf("bar width must be in (0, 1], got %v", share)
	}
	maxTicks := defaultMaxTicks
	if n, ok := opts.Int(KeyMaxTicks); ok {
		maxTicks = n
	}
	rotation := defaultRotation
	if r, ok := opts.Float(KeyRotation); ok {
		rotation = r
	}
	stacked := opts.Bool(KeyStacked)

	size := p.fin.FigSize(opts)
	barWidth := vg.Length(size[0]*plotShare*share) * vg.Inch / vg.Length(f.Len())
	if !stacked {
		barWidth /= vg.Length(len(names))
	}

	var up, down *plotter.BarChart
	for i, name := range names {
		if f.AllNaN(name) {
			logging.LogDebug("Skipping empty column", zap.String("column", name))
			continue
		}
		clr, err := chart.ParseColor(colors[i%len(colors)])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		values, _ := f.Column(name)

		if !stacked {
			b, err := newBars(values, barWidth, clr)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			b.Offset = (vg.Length(i) - vg.Length(len(names)-1)/2) * barWidth
			if err := c.Add(b); err != nil {
				return nil, err
			}
			c.AddLegendEntry(name, b)
			continue
		}

		// positive values stack upwards from zero and negative ones downwards
		pos, neg := split(values)
		posBars, err := newBars(pos, barWidth, clr)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		negBars, err := newBars(neg, barWidth, clr)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		if up != nil {
			posBars.StackOn(up)
			negBars.StackOn(down)
		}
		up, down = posBars, negBars
		if err := c.Add(posBars, negBars); err != nil {
			return nil, err
		}
		c.AddLegendEntry(name, posBars)
	}

	if !c.Empty() {
		labelCategories(c.Plot(), f.Index(), maxTicks, rotation)
	}
	return c, nil
}

// newBars returns one bar per value; missing values become empty bars.
func newBars(values []float64, width vg.Length, clr color.Color) (*plotter.BarChart, error) {
	vs := make(plotter.Values, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			vs[i] = v
		}
	}
	b, err := plotter.NewBarChart(vs, width)
	if err != nil {
		return nil, err
	}
	b.Color = clr
	b.LineStyle = draw.LineStyle{Color: clr, Width: vg.Points(0.25)}
	return b, nil
}

func split(values []float64) (pos, neg []float64) {
	pos = make([]float64, len(values))
	neg = make([]float64, len(values))
	for i, v := range values {
		switch {
		case v > 0:
			pos[i] = v
		case v < 0:
			neg[i] = v
		}
	}
	return pos, neg
}

// labelCategories names the bars by date. A regular index is labelled at
// most maxTicks times, level; an irregular one gets every label, rotated.
func labelCategories(p *plot.Plot, index []time.Time, maxTicks int, rotation float64) {
	labels := categoryLabels(index)
	regular := evenlySpaced(index)

	step := 1
	if regular {
		if maxTicks < minMaxTicks {
			maxTicks = minMaxTicks
		}
		step = (len(labels) + maxTicks - 1) / maxTicks
	}
	ticks := make([]plot.Tick, len(labels))
	for i, label := range labels {
		ticks[i] = plot.Tick{Value: float64(i)}
		if i%step == 0 {
			ticks[i].Label = label
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	if !regular && rotation != 0 {
		p.X.Tick.Label.Rotation = rotation * math.Pi / 180
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
}

// categoryLabels formats the index as coarsely as it allows: years when
// every date is 1 January, months when every date is the first, else days.
func categoryLabels(index []time.Time) []string {
	yearly, monthly := true, true
	for _, t := range index {
		if t.Day() != 1 || t.Hour() != 0 || t.Minute() != 0 {
			yearly, monthly = false, false
			break
		}
		if t.Month() != time.January {
			yearly = false
		}
	}
	layout := "2006-01-02"
	switch {
	case yearly:
		layout = "2006"
	case monthly:
		layout = "Jan 2006"
	}
	out := make([]string, len(index))
	for i, t := range index {
		out[i] = t.Format(layout)
	}
	return out
}

// evenlySpaced reports whether the index steps by a fixed number of months
// or a fixed duration.
func evenlySpaced(index []time.Time) bool {
	if len(index) < 3 {
		return true
	}
	month := func(t time.Time) int { return t.Year()*12 + int(t.Month()) }
	stepMonths := month(index[1]) - month(index[0])
	stepTime := index[1].Sub(index[0])

	byMonth, byTime := stepMonths > 0, true
	for i := 1; i < len(index); i++ {
		if month(index[i])-month(index[i-1]) != stepMonths || index[i].Day() != index[0].Day() {
			byMonth = false
		}
		if index[i].Sub(index[i-1]) != stepTime {
			byTime = false
		}
	}
	return byMonth || byTime
}
