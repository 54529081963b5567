// Package chart wraps a gonum plot as the handle that plot builders fill and
// the finalizer decorates, renders and releases.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrClosed = errors.New("chart is closed")

// Chart is a renderable figure: one gonum plot plus figure-level text.
// Plotters are kept in three layers drawn bottom to top: underlays such as
// spans, then data, then overlays such as reference lines. The zero value
// is not usable; create charts with New.
type Chart struct {
	plot        *plot.Plot
	underlays   []plot.Plotter
	data        []plot.Plotter
	overlays    []plot.Plotter
	content     int
	legend      []legendEntry
	legendShown bool
	annotations map[string]Annotation
	width       vg.Length
	height      vg.Length
	closed      bool

	rangeContent int // content count when xRange and yRange were captured
	xRange       Range
	yRange       Range
}

// Range is an axis interval.
type Range struct {
	Min, Max float64
}

// Valid reports whether the range holds at least one value.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

type legendEntry struct {
	label  string
	thumbs []plot.Thumbnailer
}

// New returns an empty chart.
func New() *Chart {
	return &Chart{
		plot:        plot.New(),
		annotations: map[string]Annotation{},
	}
}

// Plot returns the underlying gonum plot, or nil once the chart is closed.
// Use it for axes, title and legend; plotters belong in Add, Underlay or
// Decorate.
func (c *Chart) Plot() *plot.Plot {
	if c.closed {
		return nil
	}
	return c.plot
}

// Empty reports whether no data has been plotted. Decorations do not count.
func (c *Chart) Empty() bool {
	return c.content == 0
}

// Closed reports whether Close has been called.
func (c *Chart) Closed() bool {
	return c.closed
}

// Close releases the plot. Further use returns ErrClosed. Closing twice is
// a no-op.
func (c *Chart) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.plot = nil
	c.underlays, c.data, c.overlays = nil, nil, nil
	c.legend = nil
	c.annotations = nil
	return nil
}

// Add plots data and widens the axis ranges to cover it. Each plotter
// counts as content.
func (c *Chart) Add(ps ...plot.Plotter) error {
	if c.closed {
		return ErrClosed
	}
	for _, d := range ps {
		if r, ok := d.(plot.DataRanger); ok {
			xmin, xmax, ymin, ymax := r.DataRange()
			c.plot.X.Min = math.Min(c.plot.X.Min, xmin)
			c.plot.X.Max = math.Max(c.plot.X.Max, xmax)
			c.plot.Y.Min = math.Min(c.plot.Y.Min, ymin)
			c.plot.Y.Max = math.Max(c.plot.Y.Max, ymax)
		}
	}
	c.data = append(c.data, ps...)
	c.content += len(ps)
	return nil
}

// Underlay adds plotters drawn beneath the data, such as shaded spans.
// They do not change the axis ranges.
func (c *Chart) Underlay(ps ...plot.Plotter) error {
	if c.closed {
		return ErrClosed
	}
	c.underlays = append(c.underlays, ps...)
	return nil
}

// Decorate adds plotters drawn over the data, such as reference lines.
// They do not change the axis ranges.
func (c *Chart) Decorate(ps ...plot.Plotter) error {
	if c.closed {
		return ErrClosed
	}
	c.overlays = append(c.overlays, ps...)
	return nil
}

// DataRange returns the x and y ranges autoscaled from the data. They are
// captured on first use and again after more data is added, so finalising a
// chart twice starts from the same ranges.
func (c *Chart) DataRange() (x, y Range) {
	if c.closed {
		return Range{Min: 1, Max: 0}, Range{Min: 1, Max: 0}
	}
	if c.rangeContent != c.content {
		c.xRange = Range{Min: c.plot.X.Min, Max: c.plot.X.Max}
		c.yRange = Range{Min: c.plot.Y.Min, Max: c.plot.Y.Max}
		c.rangeContent = c.content
	}
	return c.xRange, c.yRange
}

// AddLine plots xys as a line and, when label is not empty, records a
// legend entry for it. The entry is only drawn once ShowLegend is called.
func (c *Chart) AddLine(label string, xys plotter.XYer, style draw.LineStyle) (*plotter.Line, error) {
	if c.closed {
		return nil, ErrClosed
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to create line %q: %w", label, err)
	}
	line.LineStyle = style
	if err := c.Add(line); err != nil {
		return nil, err
	}
	if label != "" {
		c.AddLegendEntry(label, line)
	}
	return line, nil
}

// AddLabels writes text next to points. Labels count as content.
func (c *Chart) AddLabels(xys plotter.XYs, labels []string, clr color.Color, size vg.Length) error {
	if c.closed {
		return ErrClosed
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("failed to create labels: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = clr
		l.TextStyle[i].Font.Size = size
		l.TextStyle[i].YAlign = draw.YCenter
	}
	return c.Add(l)
}

// AddLegendEntry records a legend entry without drawing it.
func (c *Chart) AddLegendEntry(label string, thumbs ...plot.Thumbnailer) {
	c.legend = append(c.legend, legendEntry{label: label, thumbs: thumbs})
}

// SetSize sets the figure size used when rendering.
func (c *Chart) SetSize(width, height vg.Length) {
	c.width, c.height = width, height
}

// Size returns the figure size; zero when never set.
func (c *Chart) Size() (vg.Length, vg.Length) {
	return c.width, c.height
}

// Annotate places figure-level text. Annotations are keyed by name so
// annotating twice with the same name replaces the first.
func (c *Chart) Annotate(name string, a Annotation) error {
	if c.closed {
		return ErrClosed
	}
	c.annotations[name] = a
	return nil
}

// Draw renders the plot layers and the figure annotations onto dc.
func (c *Chart) Draw(dc draw.Canvas) error {
	if c.closed {
		return ErrClosed
	}
	// gonum draws plotters in the order they were added, and Add widens the
	// ranges, so the layers go onto a copy whose ranges are then restored.
	p := *c.plot
	p.Add(c.underlays...)
	p.Add(c.data...)
	p.Add(c.overlays...)
	p.X.Min, p.X.Max = c.plot.X.Min, c.plot.X.Max
	p.Y.Min, p.Y.Max = c.plot.Y.Min, c.plot.Y.Max
	p.Draw(dc)

	names := make([]string, 0, len(c.annotations))
	for name := range c.annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.annotations[name].draw(dc)
	}
	return nil
}
