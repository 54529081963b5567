package finalise

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"mgchart/internal/chart"
	"mgchart/internal/config"
	"mgchart/internal/infra/fs"
	"mgchart/internal/kwargs"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type recordingDisplayer struct {
	calls  int
	name   string
	bounds image.Rectangle
	err    error
}

func (d *recordingDisplayer) Display(ctx context.Context, img image.Image, name string) error {
	d.calls++
	d.name = name
	d.bounds = img.Bounds()
	return d.err
}

func newTestFinalizer(t *testing.T) (*Finalizer, string, *recordingDisplayer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default().Chart
	cfg.Dir = dir
	shown := &recordingDisplayer{}
	return New(cfg, fs.NewChartDir(dir), WithDisplayer(shown)), dir, shown
}

func lineChart(t *testing.T, xys plotter.XYs) *chart.Chart {
	t.Helper()
	c := chart.New()
	_, err := c.AddLine("series", xys, draw.LineStyle{Color: color.Black, Width: vg.Points(1)})
	require.NoError(t, err)
	return c
}

func simpleChart(t *testing.T) *chart.Chart {
	return lineChart(t, plotter.XYs{{X: 1, Y: 5}, {X: 2, Y: 7}, {X: 3, Y: 10}})
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFinalise_UnknownOptionWritesNothing(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)
	c := simpleChart(t)

	path, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyTitle: "Chart",
		"colour": "red",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kwargs.ErrUnknownOption))
	assert.Empty(t, path)
	assert.Empty(t, listFiles(t, dir))
	assert.False(t, c.Closed())
}

func TestFinalise_WrongTypeFails(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle: "Chart",
		KeyDPI:   "high",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kwargs.ErrBadType))
	assert.Empty(t, listFiles(t, dir))
}

func TestFinalise_EmptyChartIsNoOp(t *testing.T) {
	f, dir, shown := newTestFinalizer(t)
	c := chart.New()

	path, err := f.Finalise(context.Background(), c, kwargs.Options{KeyTitle: "Nothing", KeyShow: true})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, listFiles(t, dir))
	assert.Zero(t, shown.calls)
	assert.False(t, c.Closed())
}

func TestFinalise_NilAndClosedCharts(t *testing.T) {
	f, _, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), nil, kwargs.Options{KeyTitle: "x"})
	assert.ErrorIs(t, err, ErrNilChart)

	c := simpleChart(t)
	require.NoError(t, c.Close())
	_, err = f.Finalise(context.Background(), c, kwargs.Options{KeyTitle: "x"})
	assert.ErrorIs(t, err, chart.ErrClosed)
}

func TestFinalise_SavesPNGAndCloses(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)
	c := simpleChart(t)

	path, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyTitle:   "Growth: Q1/Q2",
		KeyDPI:     50,
		KeyRFooter: "Source: test",
	})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Growth- Q1-Q2.png"), path)
	assert.True(t, c.Closed())

	img, err := gg.LoadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, 450, img.Bounds().Dx())
	assert.Equal(t, 225, img.Bounds().Dy())
}

func TestFinalise_SameNameOverwrites(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)
	opts := kwargs.Options{KeyTitle: "Repeat", KeyTag: "_a", KeyDPI: 20}

	first, err := f.Finalise(context.Background(), simpleChart(t), opts)
	require.NoError(t, err)
	second, err := f.Finalise(context.Background(), simpleChart(t), opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Repeat_a.png"}, listFiles(t, dir))
}

func TestFinalise_SVGCarriesAnnotations(t *testing.T) {
	f, _, _ := newTestFinalizer(t)
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle:    "My Chart",
		KeyTag:      "_v2",
		KeyFileType: "svg",
		KeyChartDir: dir,
		KeyLFooter:  "left foot",
		KeyRHeader:  "right head",
	})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My Chart_v2.svg"), path)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "left foot")
	assert.Contains(t, string(body), "right head")
	assert.Contains(t, string(body), "My Chart")
}

func TestFinalise_DontSaveAndDontClose(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)
	c := simpleChart(t)

	path, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyDontSave:  true,
		KeyDontClose: true,
		KeyXLabel:    "x",
	})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, listFiles(t, dir))
	require.False(t, c.Closed())
	require.NotNil(t, c.Plot())
	assert.Equal(t, "x", c.Plot().X.Label.Text)

	// the handle is still usable and can be finalised again
	path, err = f.Finalise(context.Background(), c, kwargs.Options{KeyTitle: "Again", KeyDPI: 20})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.True(t, c.Closed())
}

func TestFinalise_MissingTitle(t *testing.T) {
	f, _, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{})
	assert.ErrorIs(t, err, ErrNoTitle)

	_, err = f.Finalise(context.Background(), simpleChart(t), kwargs.Options{KeyDontSave: true})
	assert.NoError(t, err)
}

func TestFinalise_ZeroY(t *testing.T) {
	f, _, _ := newTestFinalizer(t)
	c := simpleChart(t)

	_, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyDontSave:  true,
		KeyDontClose: true,
		KeyZeroY:     true,
	})

	require.NoError(t, err)
	p := c.Plot()
	assert.LessOrEqual(t, p.Y.Min, 0.0)
	assert.Greater(t, p.Y.Max, 10.0)
}

func TestFinalise_Limits(t *testing.T) {
	f, _, _ := newTestFinalizer(t)
	c := simpleChart(t)

	_, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyDontSave:  true,
		KeyDontClose: true,
		KeyYLim:      []float64{-3, 30},
		KeyXLim:      [2]float64{0, 4},
	})

	require.NoError(t, err)
	p := c.Plot()
	assert.Equal(t, -3.0, p.Y.Min)
	assert.Equal(t, 30.0, p.Y.Max)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 4.0, p.X.Max)
}

func TestReferenceLines(t *testing.T) {
	straddling := lineChart(t, plotter.XYs{{X: -1, Y: -2}, {X: 1, Y: 2}})
	positive := simpleChart(t)

	opts := kwargs.Options{KeyY0: true, KeyX0: true}
	assert.Len(t, referenceLines(straddling.Plot(), opts), 2)
	assert.Empty(t, referenceLines(positive.Plot(), opts))
	assert.Empty(t, referenceLines(straddling.Plot(), kwargs.Options{}))
}

func TestFinalise_BadDecorationTouchesNothing(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)
	c := simpleChart(t)

	_, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyTitle:   "Chart",
		KeyXLabel:  "should not be set",
		KeyAxHLine: map[string]any{"y": 1, "width": 2},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, kwargs.ErrUnknownOption))
	assert.Empty(t, listFiles(t, dir))
	assert.Empty(t, c.Plot().X.Label.Text)
}

func TestFinalise_BadLegendTouchesNothing(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle:  "Chart",
		KeyLegend: map[string]any{"loc": "middle"},
	})

	require.Error(t, err)
	assert.Empty(t, listFiles(t, dir))
}

func TestFinalise_Decorations(t *testing.T) {
	f, _, _ := newTestFinalizer(t)

	path, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle:   "Decorated",
		KeyDPI:     20,
		KeyLegend:  true,
		KeyAxHSpan: map[string]any{"ymin": 6, "ymax": 8, "color": "gold", "alpha": 0.3},
		KeyAxVLine: map[string]any{"x": 2, "ls": "--"},
		KeyAxHLine: map[string]any{"y": 7, "color": "#cc0000", "lw": 0.5},
		KeyY0:      true,
	})

	require.NoError(t, err)
	assert.FileExists(t, path)
}

// darkPixels counts near-black pixels in the middle fifth of img.
func darkPixels(img image.Image) int {
	b := img.Bounds()
	x0, x1 := b.Min.X+b.Dx()*2/5, b.Min.X+b.Dx()*3/5
	y0, y1 := b.Min.Y+b.Dy()*2/5, b.Min.Y+b.Dy()*3/5
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r < 0x4000 && g < 0x4000 && bl < 0x4000 {
				n++
			}
		}
	}
	return n
}

func TestFinalise_SpanIsDrawnUnderData(t *testing.T) {
	f, _, _ := newTestFinalizer(t)
	diagonal := plotter.XYs{{X: 0, Y: 0}, {X: 10, Y: 10}}

	plain, err := f.Finalise(context.Background(), lineChart(t, diagonal), kwargs.Options{
		KeyTitle: "Plain",
		KeyDPI:   150,
	})
	require.NoError(t, err)
	shaded, err := f.Finalise(context.Background(), lineChart(t, diagonal), kwargs.Options{
		KeyTitle:   "Shaded",
		KeyDPI:     150,
		KeyAxHSpan: map[string]any{"ymin": 4, "ymax": 6},
	})
	require.NoError(t, err)

	plainImg, err := gg.LoadPNG(plain)
	require.NoError(t, err)
	shadedImg, err := gg.LoadPNG(shaded)
	require.NoError(t, err)

	without, with := darkPixels(plainImg), darkPixels(shadedImg)
	require.Positive(t, without)
	assert.InDelta(t, without, with, float64(without)/10, "the line stays visible inside the span")
}

func TestFinalise_LogScale(t *testing.T) {
	f, _, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyDontSave: true,
		KeyYScale:   "log",
	})
	assert.NoError(t, err)

	negative := lineChart(t, plotter.XYs{{X: 1, Y: -1}, {X: 2, Y: 3}})
	_, err = f.Finalise(context.Background(), negative, kwargs.Options{
		KeyDontSave: true,
		KeyYScale:   "log",
	})
	assert.Error(t, err)

	_, err = f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyDontSave: true,
		KeyYScale:   "symlog",
	})
	assert.Error(t, err)
}

func TestFinalise_LogScaleRejectsNonPositiveLimits(t *testing.T) {
	tests := []struct {
		name string
		opts kwargs.Options
	}{
		{"zero ylim", kwargs.Options{KeyYScale: "log", KeyYLim: []float64{0, 100}}},
		{"negative ylim", kwargs.Options{KeyYScale: "log", KeyYLim: []float64{-1, 100}}},
		{"zero xlim", kwargs.Options{KeyXScale: "log", KeyXLim: []float64{0, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, dir, _ := newTestFinalizer(t)
			c := simpleChart(t)
			opts := tt.opts.Clone()
			opts[KeyTitle] = "Log"

			var err error
			require.NotPanics(t, func() {
				_, err = f.Finalise(context.Background(), c, opts)
			})

			require.Error(t, err)
			assert.Contains(t, err.Error(), "log axis")
			assert.Empty(t, listFiles(t, dir))
			assert.False(t, c.Closed())
			assert.Empty(t, c.Plot().Title.Text, "chart untouched")
		})
	}
}

func TestFinalise_LogScaleAcceptsPositiveLimits(t *testing.T) {
	f, _, _ := newTestFinalizer(t)

	path, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle:  "Log",
		KeyDPI:    20,
		KeyYScale: "log",
		KeyYLim:   []float64{1, 100},
	})

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFinalise_RejectsNonFiniteLimits(t *testing.T) {
	f, dir, _ := newTestFinalizer(t)

	_, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle: "NaN",
		KeyYLim:  []float64{math.NaN(), 10},
	})
	assert.ErrorContains(t, err, "must be finite")

	_, err = f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle: "Inf",
		KeyXLim:  []float64{0, math.Inf(1)},
	})
	assert.ErrorContains(t, err, "must be finite")
	assert.Empty(t, listFiles(t, dir))
}

func TestFinalise_Show(t *testing.T) {
	f, _, shown := newTestFinalizer(t)

	path, err := f.Finalise(context.Background(), simpleChart(t), kwargs.Options{
		KeyTitle:   "Shown",
		KeyDPI:     20,
		KeyShow:    true,
		KeyFigSize: []float64{4, 2},
	})

	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, shown.calls)
	assert.Equal(t, "Shown", shown.name)
	assert.Equal(t, 4*showDPI, shown.bounds.Dx())
	assert.Equal(t, 2*showDPI, shown.bounds.Dy())
}

func TestFinalise_ShowFailureKeepsChartOpen(t *testing.T) {
	f, _, shown := newTestFinalizer(t)
	shown.err = errors.New("no display")
	c := simpleChart(t)

	_, err := f.Finalise(context.Background(), c, kwargs.Options{
		KeyDontSave: true,
		KeyShow:     true,
	})

	require.Error(t, err)
	assert.False(t, c.Closed())
	assert.Equal(t, "chart", shown.name)
}
