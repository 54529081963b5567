// Package lineplot charts every column of a time-indexed table as a line and
// finalises one chart per start date.
package lineplot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"mgchart/internal/chart"
	"mgchart/internal/config"
	"mgchart/internal/features/finalise"
	"mgchart/internal/frame"
	logging "mgchart/internal/infra/log"
	"mgchart/internal/kwargs"

	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Option names owned by the line plot. Everything else goes to Finalise.
const (
	KeyStarts   = "starts"
	KeyTags     = "tags"
	KeyColor    = "color"
	KeyWidth    = "width"
	KeyStyle    = "style"
	KeyAlpha    = "alpha"
	KeyAnnotate = "annotate"
	KeyDropNA   = "dropna"
)

// more points than this get the normal line width, fewer get the wide one
const denseSeries = 24

var ErrNoFrame = errors.New("no data to plot")

var ownExpected = kwargs.Expected{
	KeyStarts:   kwargs.String | kwargs.StringList | kwargs.Nil,
	KeyTags:     kwargs.String | kwargs.StringList,
	KeyColor:    kwargs.String | kwargs.StringList,
	KeyWidth:    kwargs.Number | kwargs.NumberList,
	KeyStyle:    kwargs.String | kwargs.StringList,
	KeyAlpha:    kwargs.Number | kwargs.NumberList,
	KeyAnnotate: kwargs.Bool | kwargs.BoolList,
	KeyDropNA:   kwargs.Bool,
}

// Expected is what Plot accepts: its own keys plus the finalizer's, except
// tag, which Plot derives from tags.
var Expected = func() kwargs.Expected {
	e := kwargs.Merge(finalise.Expected, ownExpected)
	delete(e, finalise.KeyTag)
	return e
}()

// Plotter builds line charts and hands them to a Finalizer.
type Plotter struct {
	fin   *finalise.Finalizer
	lines config.LinesConfig
}

// New returns a Plotter. Zero line widths fall back to the defaults.
func New(fin *finalise.Finalizer, lines config.LinesConfig) *Plotter {
	defaults := config.Default().Lines
	if lines.Normal <= 0 {
		lines.Normal = defaults.Normal
	}
	if lines.Wide <= 0 {
		lines.Wide = defaults.Wide
	}
	if lines.Narrow <= 0 {
		lines.Narrow = defaults.Narrow
	}
	return &Plotter{fin: fin, lines: lines}
}

// series is the resolved style of one column.
type series struct {
	name     string
	style    draw.LineStyle
	annotate bool
}

// Plot draws every column of f, once per start date, and finalises each
// chart. It returns the paths written; charts with nothing to draw are
// skipped.
func (p *Plotter) Plot(ctx context.Context, f *frame.Frame, opts kwargs.Options) ([]string, error) {
	if err := kwargs.Validate(opts, Expected, "line_plot"); err != nil {
		return nil, err
	}
	kwargs.Report(opts, "line_plot")
	if f == nil {
		return nil, ErrNoFrame
	}

	starts, err := parseStarts(opts)
	if err != nil {
		return nil, err
	}
	tags, err := resolveTags(opts, len(starts))
	if err != nil {
		return nil, err
	}

	finOpts := opts.Without(KeyStarts, KeyTags, KeyColor, KeyWidth, KeyStyle, KeyAlpha, KeyAnnotate, KeyDropNA)
	if len(f.Names()) > 1 && !finOpts.Has(finalise.KeyLegend) {
		finOpts[finalise.KeyLegend] = true
	}
	if _, ok := finOpts[finalise.KeyConciseDates]; !ok {
		finOpts[finalise.KeyConciseDates] = true
	}

	var paths []string
	for i, start := range starts {
		data := f.Since(start)
		c, err := p.draw(data, opts)
		if err != nil {
			return paths, err
		}

		chartOpts := finOpts.Clone()
		if tags[i] != "" {
			chartOpts[finalise.KeyTag] = tags[i]
		}
		path, err := p.fin.Finalise(ctx, c, chartOpts)
		if err != nil {
			return paths, fmt.Errorf("failed to finalise line plot starting %s: %w", startLabel(start), err)
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// SeasTrend plots a seasonally adjusted series and its trend: the first
// column thin and annotated, the second wide. Caller options win over the
// presets.
func (p *Plotter) SeasTrend(ctx context.Context, f *frame.Frame, opts kwargs.Options) ([]string, error) {
	if f == nil {
		return nil, ErrNoFrame
	}
	if n := len(f.Names()); n != 2 {
		return nil, fmt.Errorf("seas_trend needs 2 columns, got %d", n)
	}
	merged := kwargs.Options{
		KeyWidth:    []float64{p.lines.Normal, p.lines.Wide},
		KeyAnnotate: []bool{true, false},
		KeyDropNA:   true,
	}
	for k, v := range opts {
		merged[k] = v
	}
	return p.Plot(ctx, f, merged)
}

// MultiColumn charts each column of f on its own. A chart is titled by the
// title option followed by the column name, and the column's position is
// appended to every tag as _{tag}_{i}.
func (p *Plotter) MultiColumn(ctx context.Context, f *frame.Frame, opts kwargs.Options) ([]string, error) {
	if err := kwargs.Validate(opts, Expected, "multi_column"); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNoFrame
	}
	starts, err := parseStarts(opts)
	if err != nil {
		return nil, err
	}
	tags, err := resolveTags(opts, len(starts))
	if err != nil {
		return nil, err
	}
	prefix, _ := opts.String(finalise.KeyTitle)

	var paths []string
	for i, name := range f.Names() {
		data, err := f.Select(name)
		if err != nil {
			return paths, err
		}
		colTags := make([]string, len(tags))
		for j, tag := range tags {
			colTags[j] = columnTag(tag, i)
		}
		colOpts := opts.Clone()
		colOpts[finalise.KeyTitle] = prefix + name
		colOpts[KeyTags] = colTags

		got, err := p.Plot(ctx, data, colOpts)
		paths = append(paths, got...)
		if err != nil {
			return paths, fmt.Errorf("column %q: %w", name, err)
		}
	}
	return paths, nil
}

func columnTag(tag string, i int) string {
	return strings.ReplaceAll(fmt.Sprintf("_%s_%d", tag, i), "__", "_")
}

func (p *Plotter) draw(data *frame.Frame, opts kwargs.Options) (*chart.Chart, error) {
	c := chart.New()
	styles, err := p.resolveSeries(data, opts)
	if err != nil {
		return nil, err
	}
	dropNA := opts.Bool(KeyDropNA)

	for _, s := range styles {
		if data.AllNaN(s.name) {
			logging.LogDebug("Skipping empty column", zap.String("column", s.name))
			continue
		}
		pts, err := data.Points(s.name, dropNA)
		if err != nil {
			return nil, err
		}
		label := s.name
		for _, seg := range segments(pts) {
			if _, err := c.AddLine(label, seg, s.style); err != nil {
				return nil, err
			}
			label = ""
		}
		if s.annotate {
			when, value, ok := data.Last(s.name)
			if !ok {
				continue
			}
			xy := plotter.XYs{{X: float64(when.Unix()), Y: value}}
			if err := c.AddLabels(xy, []string{formatLast(value)}, s.style.Color, vg.Points(8)); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (p *Plotter) resolveSeries(data *frame.Frame, opts kwargs.Options) ([]series, error) {
	names := data.Names()

	colors, ok := opts.Strings(KeyColor)
	if !ok || len(colors) == 0 {
		colors = chart.ColorList(len(names))
	}
	widths, ok := opts.Floats(KeyWidth)
	if !ok || len(widths) == 0 {
		w := p.lines.Wide
		if data.Len() > denseSeries {
			w = p.lines.Normal
		}
		widths = []float64{w}
	}
	styles, _ := opts.Strings(KeyStyle)
	alphas, _ := opts.Floats(KeyAlpha)
	annotate, _ := opts.Bools(KeyAnnotate)

	out := make([]series, len(names))
	for i, name := range names {
		clr, err := chart.ParseColor(colors[i%len(colors)])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		if len(alphas) > 0 {
			clr = chart.WithAlpha(clr, alphas[i%len(alphas)])
		}
		style := draw.LineStyle{Color: clr, Width: vg.Points(widths[i%len(widths)])}
		if len(styles) > 0 {
			dashes, err := chart.ParseDashes(styles[i%len(styles)])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			style.Dashes = dashes
		}
		out[i] = series{
			name:     name,
			style:    style,
			annotate: len(annotate) > 0 && annotate[i%len(annotate)],
		}
	}
	return out, nil
}

// segments splits pts at NaN values; gonum lines cannot carry gaps.
func segments(pts plotter.XYs) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, pt := range pts {
		if math.IsNaN(pt.Y) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, pt)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func parseStarts(opts kwargs.Options) ([]time.Time, error) {
	raw, ok := opts.Strings(KeyStarts)
	if !ok || len(raw) == 0 {
		return []time.Time{{}}, nil
	}
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		t, err := frame.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("starts: %w", err)
		}
		out[i] = t
	}
	return out, nil
}

// resolveTags returns one tag per start. Repeated tags across several
// starts would overwrite each other, so later ones get a counter suffix.
func resolveTags(opts kwargs.Options, starts int) ([]string, error) {
	tags, ok := opts.Strings(KeyTags)
	switch {
	case !ok || len(tags) == 0:
		tags = make([]string, starts)
	case len(tags) == 1:
		one := tags[0]
		tags = make([]string, starts)
		for i := range tags {
			tags[i] = one
		}
	case len(tags) != starts:
		return nil, fmt.Errorf("tags: got %d tags for %d starts", len(tags), starts)
	default:
		tags = append([]string(nil), tags...)
	}

	if starts > 1 && allSame(tags) {
		for i := 1; i < len(tags); i++ {
			tags[i] = fmt.Sprintf("%s%05d", tags[i], i)
		}
	}
	return tags, nil
}

func allSame(tags []string) bool {
	for _, t := range tags[1:] {
		if t != tags[0] {
			return false
		}
	}
	return true
}

// formatLast rounds the annotation to 0, 1 or 2 decimals depending on size.
func formatLast(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 100:
		return fmt.Sprintf("%.0f", v)
	case abs >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func startLabel(t time.Time) string {
	if t.IsZero() {
		return "at the first row"
	}
	return t.Format("2006-01-02")
}
