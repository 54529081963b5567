// Package finalise applies the standard finishing steps to a chart: titles
// and labels, header and footer text, zero lines, legend and span
// decorations, then saving under a deterministic name, showing and closing.
package finalise

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"mgchart/internal/chart"
	"mgchart/internal/config"
	"mgchart/internal/infra/fs"
	logging "mgchart/internal/infra/log"
	"mgchart/internal/kwargs"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var ErrNilChart = errors.New("chart is nil")

const (
	defaultFileType = "png"
	defaultDPI      = 300
)

var defaultFigSize = [2]float64{9.0, 4.5}

var annotationColor = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

var annotationPositions = map[string]struct {
	x, y   float64
	xAlign text.XAlignment
	yAlign text.YAlignment
}{
	KeyRFooter: {0.99, 0.001, text.XRight, text.YBottom},
	KeyLFooter: {0.01, 0.001, text.XLeft, text.YBottom},
	KeyRHeader: {0.99, 0.999, text.XRight, text.YTop},
	KeyLHeader: {0.01, 0.999, text.XLeft, text.YTop},
}

// Finalizer finishes charts using shared defaults and a fallback chart
// directory.
type Finalizer struct {
	cfg     config.ChartConfig
	dir     *fs.ChartDir
	display Displayer
}

type Option func(*Finalizer)

// WithDisplayer replaces the external viewer used by the show option.
func WithDisplayer(d Displayer) Option {
	return func(f *Finalizer) {
		f.display = d
	}
}

// New returns a Finalizer. A nil dir falls back to cfg.Dir.
func New(cfg config.ChartConfig, dir *fs.ChartDir, opts ...Option) *Finalizer {
	if dir == nil {
		dir = fs.NewChartDir(cfg.Dir)
	}
	f := &Finalizer{
		cfg:     cfg,
		dir:     dir,
		display: &Viewer{Command: cfg.Viewer, Timeout: cfg.ViewerTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ChartDir returns the fallback output directory.
func (f *Finalizer) ChartDir() *fs.ChartDir {
	return f.dir
}

// Config returns the defaults the finalizer was built with.
func (f *Finalizer) Config() config.ChartConfig {
	return f.cfg
}

// FigSize returns the figure size in inches Finalise uses for opts: the
// figsize option, else the configured size, else 9 by 4.5.
func (f *Finalizer) FigSize(opts kwargs.Options) [2]float64 {
	if pair, ok := opts.Pair(KeyFigSize); ok {
		return pair
	}
	if len(f.cfg.FigSize) == 2 {
		return [2]float64{f.cfg.FigSize[0], f.cfg.FigSize[1]}
	}
	return defaultFigSize
}

// plan is everything derived from the options before the chart is touched.
type plan struct {
	path           string // empty when not saving
	fileType       string
	dpi            int
	width, height  vg.Length
	xScale, yScale axisScale
	underlays      []plot.Plotter // spans, drawn beneath the data
	overlays       []plot.Plotter // lines, drawn over the data
	legend         map[string]any
}

// Finalise validates opts, decorates c, saves it unless dont_save, shows it
// if show and closes it unless dont_close. It returns the saved path, or ""
// when nothing was written. A chart with no data is left untouched and
// Finalise returns ("", nil).
func (f *Finalizer) Finalise(ctx context.Context, c *chart.Chart, opts kwargs.Options) (string, error) {
	if err := kwargs.Validate(opts, Expected, "finalise"); err != nil {
		return "", err
	}
	kwargs.Report(opts, "finalise")

	if c == nil {
		return "", ErrNilChart
	}
	if c.Closed() {
		return "", chart.ErrClosed
	}
	title, _ := opts.String(KeyTitle)
	if c.Empty() {
		logging.LogDebug("Skipping empty chart", zap.String("title", title))
		return "", nil
	}

	pl, err := f.plan(c, opts)
	if err != nil {
		return "", err
	}

	if err := f.apply(c, opts, pl); err != nil {
		return "", err
	}

	if pl.path != "" {
		size, err := fs.WriteFileAtomic(pl.path, func(w io.Writer) error {
			return Render(c, pl.fileType, pl.dpi, w)
		})
		if err != nil {
			logging.LogError("Failed to save chart", zap.String("path", pl.path), zap.Error(err))
			return "", fmt.Errorf("failed to save chart: %w", err)
		}
		logging.LogSuccess("Chart saved",
			zap.String("path", pl.path),
			zap.Int64("size", size),
			zap.Int("dpi", pl.dpi))
	}

	if opts.Bool(KeyShow) {
		canvas, err := Rasterize(c, showDPI)
		if err != nil {
			return pl.path, fmt.Errorf("failed to render chart for display: %w", err)
		}
		if err := f.display.Display(ctx, canvas.Image(), displayName(pl.path, title)); err != nil {
			return pl.path, fmt.Errorf("failed to show chart: %w", err)
		}
	}

	if !opts.Bool(KeyDontClose) {
		if err := c.Close(); err != nil {
			return pl.path, fmt.Errorf("failed to close chart: %w", err)
		}
	}
	return pl.path, nil
}

func (f *Finalizer) plan(c *chart.Chart, opts kwargs.Options) (*plan, error) {
	pl := &plan{}

	if !opts.Bool(KeyDontSave) {
		fileType := f.cfg.FileType
		if fileType == "" {
			fileType = defaultFileType
		}
		path, err := Filename(opts, f.dir, fileType)
		if err != nil {
			return nil, err
		}
		pl.path = path
		pl.fileType = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	pl.dpi = f.cfg.DPI
	if dpi, ok := opts.Int(KeyDPI); ok {
		pl.dpi = dpi
	}
	if pl.dpi == 0 {
		pl.dpi = defaultDPI
	}
	if pl.dpi < 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", pl.dpi)
	}

	size := f.FigSize(opts)
	if size[0] <= 0 || size[1] <= 0 {
		return nil, fmt.Errorf("figsize must be positive, got %v", size)
	}
	pl.width, pl.height = inches(size[0]), inches(size[1])

	xs, xSet := opts.String(KeyXScale)
	ys, ySet := opts.String(KeyYScale)
	var err error
	if pl.xScale, err = parseScale(xs, xSet); err != nil {
		return nil, err
	}
	if pl.yScale, err = parseScale(ys, ySet); err != nil {
		return nil, err
	}
	p := c.Plot()
	xLog := isLog(pl.xScale, p.X)
	yLog := isLog(pl.yScale, p.Y)
	xr, yr := c.DataRange()
	if xLog && xr.Min <= 0 {
		return nil, fmt.Errorf("log x scale needs positive data, minimum is %v", xr.Min)
	}
	if yLog && yr.Min <= 0 {
		return nil, fmt.Errorf("log y scale needs positive data, minimum is %v", yr.Min)
	}
	if lim, ok := opts.Pair(KeyXLim); ok {
		if err := checkLimits(KeyXLim, lim, xLog); err != nil {
			return nil, err
		}
	}
	if lim, ok := opts.Pair(KeyYLim); ok {
		if err := checkLimits(KeyYLim, lim, yLog); err != nil {
			return nil, err
		}
	}

	if err := pl.buildDecorations(opts); err != nil {
		return nil, err
	}

	switch v := opts[KeyLegend].(type) {
	case bool:
		if v {
			pl.legend = f.defaultLegend()
		}
	case nil:
	default:
		m, _ := opts.Map(KeyLegend)
		if err := chart.ValidateLegend(m); err != nil {
			return nil, err
		}
		pl.legend = m
	}

	return pl, nil
}

func (pl *plan) buildDecorations(opts kwargs.Options) error {
	if m, ok := opts.Map(KeyAxHSpan); ok {
		span, err := chart.HSpanFromOptions(m)
		if err != nil {
			return err
		}
		pl.underlays = append(pl.underlays, span)
	}
	if m, ok := opts.Map(KeyAxVSpan); ok {
		span, err := chart.VSpanFromOptions(m)
		if err != nil {
			return err
		}
		pl.underlays = append(pl.underlays, span)
	}
	if m, ok := opts.Map(KeyAxHLine); ok {
		line, err := chart.HLineFromOptions(m)
		if err != nil {
			return err
		}
		pl.overlays = append(pl.overlays, line)
	}
	if m, ok := opts.Map(KeyAxVLine); ok {
		line, err := chart.VLineFromOptions(m)
		if err != nil {
			return err
		}
		pl.overlays = append(pl.overlays, line)
	}
	return nil
}

func (f *Finalizer) defaultLegend() map[string]any {
	m := f.cfg.Legend.LegendOptions()
	if len(m) == 0 {
		m = map[string]any{"loc": "best", "fontsize": "small"}
	}
	return m
}

func (f *Finalizer) apply(c *chart.Chart, opts kwargs.Options, pl *plan) error {
	p := c.Plot()

	applyScale(&p.X, pl.xScale)
	applyScale(&p.Y, pl.yScale)
	_, xLog := p.X.Scale.(plot.LogScale)
	_, yLog := p.Y.Scale.(plot.LogScale)

	xr, yr := c.DataRange()
	xr, yr = padded(xr, xLog), padded(yr, yLog)
	p.X.Min, p.X.Max = xr.Min, xr.Max
	p.Y.Min, p.Y.Max = yr.Min, yr.Max

	// title and axis labels are always set, so an absent option clears them
	p.Title.Text, _ = opts.String(KeyTitle)
	p.X.Label.Text, _ = opts.String(KeyXLabel)
	p.Y.Label.Text, _ = opts.String(KeyYLabel)

	if lim, ok := opts.Pair(KeyXLim); ok {
		p.X.Min, p.X.Max = lim[0], lim[1]
	}
	if lim, ok := opts.Pair(KeyYLim); ok {
		p.Y.Min, p.Y.Max = lim[0], lim[1]
	}

	c.SetSize(pl.width, pl.height)
	for _, key := range []string{KeyRFooter, KeyLFooter, KeyRHeader, KeyLHeader} {
		txt, ok := opts.String(key)
		if !ok {
			continue
		}
		pos := annotationPositions[key]
		if err := c.Annotate(key, chart.Annotation{
			Text:   txt,
			X:      pos.x,
			Y:      pos.y,
			XAlign: pos.xAlign,
			YAlign: pos.yAlign,
			Size:   vg.Points(8),
			Italic: true,
			Color:  annotationColor,
		}); err != nil {
			return err
		}
	}

	if opts.Bool(KeyZeroY) {
		if yLog {
			logging.LogWarn("zero_y ignored on a log y axis")
		} else {
			includeZero(&p.Y)
		}
	}

	if err := c.Decorate(referenceLines(p, opts)...); err != nil {
		return err
	}

	if opts.Bool(KeyConciseDates) {
		p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat(p.X.Max - p.X.Min)}
	}

	if err := c.Underlay(pl.underlays...); err != nil {
		return err
	}
	if err := c.Decorate(pl.overlays...); err != nil {
		return err
	}
	if pl.legend != nil {
		if err := c.ShowLegend(pl.legend); err != nil {
			return err
		}
	}
	return nil
}

// referenceLines returns the y0 and x0 lines, each only when zero lies
// strictly inside the axis range.
func referenceLines(p *plot.Plot, opts kwargs.Options) []plot.Plotter {
	var refs []plot.Plotter
	if opts.Bool(KeyY0) && p.Y.Min < 0 && 0 < p.Y.Max {
		refs = append(refs, &chart.HLine{Y: 0, LineStyle: chart.ReferenceLine()})
	}
	if opts.Bool(KeyX0) && p.X.Min < 0 && 0 < p.X.Max {
		refs = append(refs, &chart.VLine{X: 0, LineStyle: chart.ReferenceLine()})
	}
	return refs
}

func displayName(path, title string) string {
	if path != "" {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if stem := SanitizeTitle(title); stem != "" {
		return stem
	}
	return "chart"
}
