package chart

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var testStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(1)}

func TestChart_EmptyUntilData(t *testing.T) {
	c := New()
	assert.True(t, c.Empty())

	require.NoError(t, c.Decorate(&HLine{Y: 1, LineStyle: testStyle}))
	assert.True(t, c.Empty(), "decorations are not data")

	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 2}}, testStyle)
	require.NoError(t, err)
	assert.False(t, c.Empty())
}

func TestChart_Close(t *testing.T) {
	c := New()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.True(t, c.Closed())
	assert.Nil(t, c.Plot())
	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}}, testStyle)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Annotate("x", Annotation{}), ErrClosed)
	assert.ErrorIs(t, c.ShowLegend(nil), ErrClosed)
}

func TestChart_DataRangeSnapshot(t *testing.T) {
	c := New()
	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}, {X: 10, Y: 5}}, testStyle)
	require.NoError(t, err)

	x, y := c.DataRange()
	assert.Equal(t, Range{Min: 0, Max: 10}, x)
	assert.Equal(t, Range{Min: 1, Max: 5}, y)

	c.Plot().Y.Min, c.Plot().Y.Max = -100, 100
	_, y = c.DataRange()
	assert.Equal(t, Range{Min: 1, Max: 5}, y, "range is captured from the data, not later edits")

	_, err = c.AddLine("b", plotter.XYs{{X: 0, Y: 200}, {X: 1, Y: 300}}, testStyle)
	require.NoError(t, err)
	_, y = c.DataRange()
	assert.Equal(t, 300.0, y.Max)
}

func TestChart_NaNLineFails(t *testing.T) {
	c := New()
	_, err := c.AddLine("nan", plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: nan()}}, testStyle)
	assert.Error(t, err)
	assert.True(t, c.Empty())
}

func TestChart_LegendAddedOnce(t *testing.T) {
	c := New()
	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 2}}, testStyle)
	require.NoError(t, err)
	_, err = c.AddLine("", plotter.XYs{{X: 2, Y: 1}, {X: 3, Y: 2}}, testStyle)
	require.NoError(t, err)

	require.NoError(t, c.ShowLegend(map[string]any{"loc": "upper left", "fontsize": 9}))
	require.NoError(t, c.ShowLegend(map[string]any{"loc": 4}))

	l := c.Plot().Legend
	assert.False(t, l.Top)
	assert.False(t, l.Left)
	assert.Equal(t, vg.Points(9), l.TextStyle.Font.Size)
}

func TestValidateLegend(t *testing.T) {
	assert.NoError(t, ValidateLegend(nil))
	assert.NoError(t, ValidateLegend(map[string]any{"loc": "Lower Right", "fontsize": "x-small"}))
	assert.Error(t, ValidateLegend(map[string]any{"loc": "centre"}))
	assert.Error(t, ValidateLegend(map[string]any{"loc": 7}))
	assert.Error(t, ValidateLegend(map[string]any{"fontsize": "huge"}))
	assert.Error(t, ValidateLegend(map[string]any{"fontsize": -1}))
	assert.Error(t, ValidateLegend(map[string]any{"ncol": 2}))
}

func TestChart_DrawWithAnnotations(t *testing.T) {
	c := New()
	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 2}}, testStyle)
	require.NoError(t, err)
	require.NoError(t, c.Annotate("rfooter", Annotation{
		Text: "Source", X: 0.99, Y: 0.001, Size: vg.Points(8), Italic: true, Color: color.Gray{Y: 0x99},
	}))
	c.SetSize(4*vg.Inch, 2*vg.Inch)

	w, h := c.Size()
	canvas := vgimg.New(w, h)
	assert.NoError(t, c.Draw(draw.New(canvas)))
}

type recorder struct {
	name string
	seen *[]string
	yMin *float64
}

func (r recorder) Plot(_ draw.Canvas, p *plot.Plot) {
	*r.seen = append(*r.seen, r.name)
	if r.yMin != nil {
		*r.yMin = p.Y.Min
	}
}

func TestChart_DrawsLayersInOrder(t *testing.T) {
	var seen []string
	var drawnMin float64
	c := New()
	_, err := c.AddLine("a", plotter.XYs{{X: 0, Y: 1}, {X: 10, Y: 5}}, testStyle)
	require.NoError(t, err)

	require.NoError(t, c.Decorate(recorder{name: "over", seen: &seen}))
	require.NoError(t, c.Add(recorder{name: "data", seen: &seen, yMin: &drawnMin}))
	require.NoError(t, c.Underlay(recorder{name: "under", seen: &seen}))
	c.Plot().Y.Min = 2
	c.SetSize(4*vg.Inch, 2*vg.Inch)

	w, h := c.Size()
	require.NoError(t, c.Draw(draw.New(vgimg.New(w, h))))

	assert.Equal(t, []string{"under", "data", "over"}, seen)
	assert.Equal(t, 2.0, drawnMin, "limits set on the plot survive drawing")
	assert.Equal(t, 2.0, c.Plot().Y.Min)

	seen = nil
	require.NoError(t, c.Draw(draw.New(vgimg.New(w, h))))
	assert.Equal(t, []string{"under", "data", "over"}, seen, "drawing twice does not duplicate layers")
}

func TestChart_UnderlayIsNotData(t *testing.T) {
	c := New()
	require.NoError(t, c.Underlay(&HSpan{Min: 0, Max: 1, Color: color.Black}))
	assert.True(t, c.Empty())

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Underlay(&HSpan{}), ErrClosed)
	assert.ErrorIs(t, c.Decorate(&HLine{}), ErrClosed)
}
